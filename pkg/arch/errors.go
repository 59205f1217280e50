package arch

import (
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedArch = errors.New("unsupported architecture")
	ErrNoVirtExtension = errors.New("neither vmx nor svm advertised in cpu flags")
)
