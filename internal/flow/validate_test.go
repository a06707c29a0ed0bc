package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateNumber(t *testing.T) {
	v, err := validateNumber("1500.50")
	require.NoError(t, err)
	require.Equal(t, 1500.50, v)

	v, err = validateNumber(" 42,5 ")
	require.NoError(t, err)
	require.Equal(t, 42.5, v)

	for _, bad := range []string{"abc", "", "-3", "0"} {
		_, err = validateNumber(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestValidateText(t *testing.T) {
	v, err := validateText("  Acme Co ")
	require.NoError(t, err)
	require.Equal(t, "Acme Co", v)

	_, err = validateText("   ")
	require.Error(t, err)
}

func TestValidateEmail(t *testing.T) {
	v, err := validateEmail("a@acme.com")
	require.NoError(t, err)
	require.Equal(t, "a@acme.com", v)

	_, err = validateEmail("not-an-email")
	require.Error(t, err)
}

func TestValidateDate(t *testing.T) {
	v, err := validateDate("2026-08-31")
	require.NoError(t, err)
	require.Equal(t, "2026-08-31", v)

	v, err = validateDate("31.08.2026")
	require.NoError(t, err)
	require.Equal(t, "2026-08-31", v)

	_, err = validateDate("soon")
	require.Error(t, err)
}
