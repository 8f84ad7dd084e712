package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
)

const countAlias = "total"

// Count runs a server-side COUNT aggregation over the query.
func Count(ctx context.Context, q firestore.Query) (int, error) {
	result, err := q.NewAggregationQuery().WithCount(countAlias).Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return countValue(result[countAlias])
}

func countValue(raw any) (int, error) {
	switch v := raw.(type) {
	case *firestorepb.Value:
		return int(v.GetIntegerValue()), nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("unexpected count result type %T", raw)
	}
}
