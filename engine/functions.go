package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/jokeqa/vector"
	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterVectorFunctions registers vec_cosine, vec_l2 and vec_angular with
// the driver so they are available on connections opened after this call.
// Existing open connections will not see new functions. Safe to call more
// than once.
func RegisterVectorFunctions() error {
	registerOnce.Do(func() {
		for name, fn := range map[string]func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error){
			"vec_cosine":  vecCosineImpl,
			"vec_l2":      vecL2Impl,
			"vec_angular": vecAngularImpl,
		} {
			if err := sqlite.RegisterDeterministicScalarFunction(name, 2, fn); err != nil {
				registerErr = fmt.Errorf("engine: register %s: %w", name, err)
				return
			}
		}
	})
	return registerErr
}

func embeddingArgs(name string, args []driver.Value) ([]float32, []float32, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	default:
		return nil, fmt.Errorf("vec: unsupported argument type %T for embedding; want BLOB", arg)
	}
}

func vecCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddingArgs("vec_cosine", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	return vector.CosineSimilarity(a, b)
}

func vecL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddingArgs("vec_l2", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	return vector.L2Distance(a, b)
}

// vecAngularImpl returns sqrt(2-2cos); NULL embeddings yield NULL.
func vecAngularImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddingArgs("vec_angular", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	return vector.AngularDistance(a, b)
}
