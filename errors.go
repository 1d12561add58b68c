// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

import (
	"fmt"
	"log"
)

// Error returns the error status of the diagram. We return an empty string if
// there are no errors.
func (b *DD) Error() string {
	if b.error == nil {
		return ""
	}
	return b.error.Error()
}

// Errored returns true if there was an error during a computation.
func (b *DD) Errored() bool {
	return b.error != nil
}

// Err returns the error status of the diagram as an error value, or nil.
func (b *DD) Err() error {
	return b.error
}

func (b *DD) seterror(format string, a ...interface{}) Node {
	if b.error != nil {
		format = format + "; " + b.Error()
		b.error = fmt.Errorf(format, a...)
		return nil
	}
	b.error = fmt.Errorf(format, a...)
	if _DEBUG {
		log.Println(b.error)
	}
	return nil
}

func (b *DD) checkptr(n Node) error {
	switch {
	case n == nil:
		return fmt.Errorf("illegal nil node")
	case *n < 0 || *n >= len(b.nodes):
		return fmt.Errorf("illegal node (%d)", *n)
	case *n >= 2 && b.nodes[*n].low == -1:
		return fmt.Errorf("illegal access to freed node (%d)", *n)
	}
	return nil
}

func (b *DD) checkvar(v Var) error {
	if v < 0 || int32(v) >= b.varnum {
		return fmt.Errorf("unknown variable (%d)", v)
	}
	return nil
}
