package password

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStrength_RejectsShortPassword(t *testing.T) {
	err := ValidateStrength("Sh0rt!")
	require.Error(t, err)
}

func TestValidateStrength_RejectsMissingCharacterClass(t *testing.T) {
	assert.Error(t, ValidateStrength("alllowercase12345"))
	assert.Error(t, ValidateStrength("ALLUPPERCASE12345"))
	assert.Error(t, ValidateStrength("NoDigitsButLongEnoughHere!"))
	assert.Error(t, ValidateStrength("NoSpecialChars12345678"))
}

func TestValidateStrength_AcceptsCompliantPassword(t *testing.T) {
	assert.NoError(t, ValidateStrength("Str0ng!Passw0rd"))
}

func TestHashAndVerify_RoundTrips(t *testing.T) {
	svc := New(nil)
	hash, err := svc.Hash("Str0ng!Passw0rd")
	require.NoError(t, err)

	ok, err := svc.Verify("Str0ng!Passw0rd", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_EmbedsSpecParameters(t *testing.T) {
	svc := New(nil)
	hash, err := svc.Hash("Str0ng!Passw0rd")
	require.NoError(t, err)

	p, _, _, err := parseHash(hash)
	require.NoError(t, err)
	assert.EqualValues(t, 65536, p.Memory)
	assert.EqualValues(t, 3, p.Time)
	assert.EqualValues(t, 4, p.Parallelism)
}

func TestVerifyAndRehash_NoRehashWhenParamsCurrent(t *testing.T) {
	svc := New(nil)
	hash, err := svc.Hash("Str0ng!Passw0rd")
	require.NoError(t, err)

	ok, newHash, err := svc.VerifyAndRehash("Str0ng!Passw0rd", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, newHash)
}

func TestVerifyAndRehash_RehashesWhenParamsStale(t *testing.T) {
	staleParams := Params{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	staleHash, err := hashWithParams("Str0ng!Passw0rd", staleParams)
	require.NoError(t, err)

	svc := New(nil)
	ok, newHash, err := svc.VerifyAndRehash("Str0ng!Passw0rd", staleHash)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, newHash)

	p, _, _, err := parseHash(newHash)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultParams.Memory, p.Memory)
}

func TestVerifyAndRehash_WrongPasswordNeverRehashes(t *testing.T) {
	svc := New(nil)
	hash, err := svc.Hash("Str0ng!Passw0rd")
	require.NoError(t, err)

	ok, newHash, err := svc.VerifyAndRehash("totally-wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, newHash)
}

type stubBreachChecker struct {
	compromised bool
	reachable   bool
	err         error
}

func (s stubBreachChecker) IsCompromised(ctx context.Context, password string) (bool, bool, error) {
	return s.compromised, s.reachable, s.err
}

func TestCheckBreach_FailOpenOnOracleErrorByDefault(t *testing.T) {
	svc := New(stubBreachChecker{reachable: false, err: assertErr})
	compromised, err := svc.CheckBreach(context.Background(), "whatever")
	assert.Error(t, err)
	assert.False(t, compromised)
}

func TestCheckBreach_FailClosedWhenConfigured(t *testing.T) {
	svc := New(stubBreachChecker{reachable: false, err: assertErr})
	svc.FailClosedOnBreachOracleError = true
	compromised, err := svc.CheckBreach(context.Background(), "whatever")
	assert.Error(t, err)
	assert.True(t, compromised)
}

func TestCheckBreach_ReportsCompromisedPassword(t *testing.T) {
	svc := New(stubBreachChecker{compromised: true, reachable: true})
	compromised, err := svc.CheckBreach(context.Background(), "password123")
	assert.NoError(t, err)
	assert.True(t, compromised)
}

var assertErr = errOracleUnreachable{}

type errOracleUnreachable struct{}

func (errOracleUnreachable) Error() string { return "breach oracle unreachable" }
