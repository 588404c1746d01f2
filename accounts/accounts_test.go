package accounts_test

import (
	"strconv"
	"testing"

	"github.com/oidc-sandbox/go-oidc-rp/accounts"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	for i := 0; i < 100; i++ {
		number, err := accounts.Number()
		require.NoError(t, err)
		require.Len(t, number, 10)

		n, err := strconv.ParseInt(number, 10, 64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, int64(1_000_000_000))
		require.LessOrEqual(t, n, int64(9_999_999_999))
	}
}
