package driver

import (
	"errors"
	"fmt"
	"io"

	"lorax/internal/asm"
	"lorax/internal/diag"
)

// EmitAssembly writes the lowered unit of res as assembly. An operation that
// survived lowering is also reported as a diagnostic.
func EmitAssembly(w io.Writer, res *LowerResult, opts asm.Options) error {
	if res == nil || res.Unit == nil {
		return errors.New("driver: nothing to emit")
	}
	err := asm.Emit(w, res.Unit.Context, res.Unit.Module, opts)
	if err == nil {
		return nil
	}
	if errors.Is(err, asm.ErrNotLowered) && res.ParseResult != nil {
		reportFileError(res.Bag, res.File, diag.IRLeftoverOp, err.Error())
	}
	return fmt.Errorf("%s: %w", res.File.Path, err)
}
