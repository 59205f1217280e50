package settings

const CmdName = "kvmwatch"
