package antenna

import (
	"context"
	"slices"

	"github.com/alitto/pond/v2"
)

// selectProps applies the top-level key selection.
//
// A partial reload keeps only the requested keys that are present in props.
// A full load keeps everything except lazy props.
func selectProps(props Props, only []string, partial bool) Props {
	selected := make(Props, len(props))

	for key, val := range props {
		if partial {
			if slices.Contains(only, key) {
				selected[key] = val
			}

			continue
		}

		if _, ok := val.(*LazyProp); ok {
			continue
		}

		selected[key] = val
	}

	return selected
}

// resolveProps selects and resolves props into a map of plain values.
//
// Top-level values are resolved on a pool of at most concurrency workers;
// nested maps are resolved sequentially by the worker owning their top-level key.
func resolveProps(
	ctx context.Context,
	props Props,
	only []string,
	partial bool,
	concurrency int,
) (map[string]any, error) {
	selected := selectProps(props, only, partial)
	m := make(map[string]any, len(selected))

	if len(selected) == 0 {
		return m, nil
	}

	if concurrency == 1 || len(selected) == 1 {
		for key, val := range selected {
			v, err := resolveValue(ctx, val)
			if err != nil {
				return nil, err
			}

			m[key] = v
		}

		return m, nil
	}

	keys := make([]string, 0, len(selected))
	for key := range selected {
		keys = append(keys, key)
	}

	pool := pond.NewResultPool[any](concurrency)
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)

	for _, key := range keys {
		val := selected[key]

		group.SubmitErr(func() (any, error) {
			return resolveValue(ctx, val)
		})
	}

	result, err := group.Wait()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	for i, key := range keys {
		m[key] = result[i]
	}

	return m, nil
}

// resolveValue resolves a single prop value until it is neither a callable,
// a lazy prop nor an awaitable, then descends into nested maps.
//
//nolint:cyclop
func resolveValue(ctx context.Context, val any) (any, error) {
	var err error

	for {
		switch v := val.(type) {
		case *LazyProp:
			val, err = v.Resolve(ctx)
		case Lazy:
			val, err = v.Value(ctx)
		case func(context.Context) (any, error):
			val, err = v(ctx)
		case func() (any, error):
			val, err = v()
		case func() any:
			val = v()
		case Awaitable:
			val, err = v.Await(ctx)
		case Props:
			return resolveMap(ctx, v)
		case map[string]any:
			return resolveMap(ctx, v)
		default:
			return val, nil
		}

		if err != nil {
			return nil, err
		}
	}
}

func resolveMap(ctx context.Context, m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))

	for key, val := range m {
		v, err := resolveValue(ctx, val)
		if err != nil {
			return nil, err
		}

		out[key] = v
	}

	return out, nil
}
