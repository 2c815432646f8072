package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/jvm-runtime/errors"
)

// Class is a resolved class handle: one dotted export of a loaded
// module.
type Class struct {
	canonical string
	fn        api.Function
}

// CanonicalName implements jvmruntime.Class
func (c *Class) CanonicalName() string { return c.canonical }

// Invoke calls the class's backing export. Arguments and results are
// raw stack values; rich marshaling is the embedder's concern.
func (c *Class) Invoke(ctx context.Context, args ...uint64) ([]uint64, error) {
	results, err := c.fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err, "invoke "+c.canonical)
	}
	return results, nil
}

// export is a global free function backed by a dotless module export.
type export struct {
	name string
	fn   api.Function
}

// Name implements jvmruntime.Function
func (e *export) Name() string { return e.name }

// Call invokes the export with integer arguments. A single result is
// returned as uint64, multiple results as []uint64.
func (e *export) Call(ctx context.Context, args ...any) (any, error) {
	stack := make([]uint64, len(args))
	for idx, a := range args {
		v, err := toStackValue(a)
		if err != nil {
			return nil, err
		}
		stack[idx] = v
	}

	results, err := e.fn.Call(ctx, stack...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err, "call "+e.name)
	}
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

func toStackValue(a any) (uint64, error) {
	switch v := a.(type) {
	case uint64:
		return v, nil
	case uint32:
		return uint64(v), nil
	case int:
		return uint64(v), nil
	case int32:
		return uint64(v), nil
	case int64:
		return uint64(v), nil
	default:
		return 0, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Detail("unsupported argument type %T", a).
			Build()
	}
}
