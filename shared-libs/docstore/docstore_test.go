package docstore

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestInt(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  int
		ok    bool
	}{
		{"int64", int64(50), 50, true},
		{"negative", int64(-30), -30, true},
		{"float", float64(49.9), 49, true},
		{"missing", nil, 0, false},
		{"string", "50", 0, false},
		{"bool", true, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Int(tc.value)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestIntPtr(t *testing.T) {
	require.Nil(t, IntPtr("oops"))
	p := IntPtr(int64(50))
	require.NotNil(t, p)
	require.Equal(t, 50, *p)
}

func TestStringsAndString(t *testing.T) {
	require.Equal(t, []string{"go", "sql"}, Strings([]any{"go", 3, "sql"}))
	require.Nil(t, Strings("go"))
	require.Equal(t, "", String(12))
	require.Equal(t, "x", String("x"))
}

func TestTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.Equal(t, ts, Time(ts))
	require.Equal(t, ts, Time("2024-03-01T10:00:00Z"))
	require.True(t, Time("yesterday").IsZero())
	require.True(t, Time(nil).IsZero())
}

func TestStatusHelpers(t *testing.T) {
	require.True(t, IsNotFound(status.Error(codes.NotFound, "missing")))
	require.False(t, IsNotFound(errors.New("boom")))
	require.True(t, IsAlreadyExists(status.Error(codes.AlreadyExists, "dup")))
}

func TestCountValue(t *testing.T) {
	n, err := countValue(&firestorepb.Value{ValueType: &firestorepb.Value_IntegerValue{IntegerValue: 7}})
	require.NoError(t, err)
	require.Equal(t, 7, n)

	n, err = countValue(int64(3))
	require.NoError(t, err)
	require.Equal(t, 3, n)

	_, err = countValue("7")
	require.Error(t, err)
}
