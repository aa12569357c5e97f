package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/platform/events"
)

type fakeRefreshRepo struct {
	byHash map[string]*entity.RefreshToken
	byID   map[string]*entity.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{byHash: map[string]*entity.RefreshToken{}, byID: map[string]*entity.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, t *entity.RefreshToken) error {
	f.byHash[t.TokenHash] = t
	f.byID[t.ID] = t
	return nil
}

func (f *fakeRefreshRepo) GetByTokenHashForUpdate(ctx context.Context, tenantID, tokenHash string) (*entity.RefreshToken, error) {
	t, ok := f.byHash[tokenHash]
	if !ok || t.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	copy := *t
	return &copy, nil
}

func (f *fakeRefreshRepo) Revoke(ctx context.Context, tenantID, id string) error {
	t, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.IsRevoked = true
	return nil
}

func (f *fakeRefreshRepo) RevokeFamily(ctx context.Context, tenantID, familyID string) error {
	for _, t := range f.byID {
		if t.FamilyID == familyID {
			t.IsRevoked = true
		}
	}
	return nil
}

func (f *fakeRefreshRepo) CountNonRevokedForUser(ctx context.Context, tenantID, userID string) (int, error) {
	count := 0
	for _, t := range f.byID {
		if t.UserID == userID && !t.IsRevoked {
			count++
		}
	}
	return count, nil
}

func testSigner(t *testing.T) *Signer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	kp := &KeyPair{KID: "test-key-1", PrivateKey: key, PublicKey: &key.PublicKey}
	return NewSigner("taskforge-test", kp, []*KeyPair{kp})
}

func TestSignAndVerify_RoundTrips(t *testing.T) {
	signer := testSigner(t)
	raw, err := signer.Sign(AccessTokenInput{
		UserID: "user-1", Email: "a@example.com", TenantID: "tenant-1",
		Roles: []string{entity.RoleMember}, Permissions: []string{entity.PermissionTasksRead},
	})
	require.NoError(t, err)

	claims, err := signer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "tenant-1", claims.TenantID)
}

func TestVerify_RejectsUnknownKID(t *testing.T) {
	signerA := testSigner(t)
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKP := &KeyPair{KID: "other-key", PrivateKey: key, PublicKey: &key.PublicKey}
	signerB := NewSigner("taskforge-test", otherKP, []*KeyPair{otherKP})

	raw, err := signerA.Sign(AccessTokenInput{UserID: "user-1", TenantID: "tenant-1"})
	require.NoError(t, err)

	_, err = signerB.Verify(raw)
	assert.Error(t, err)
}

func TestRotate_HappyPathRevokesOldIssuesNew(t *testing.T) {
	repo := newFakeRefreshRepo()
	svc := NewRefreshService(repo, []byte("pepper"))
	signer := testSigner(t)
	in := AccessTokenInput{UserID: "user-1", TenantID: "tenant-1"}

	issued, err := svc.IssueNewFamily(context.Background(), signer, in, nil)
	require.NoError(t, err)

	rotated, err := svc.Rotate(context.Background(), signer, "tenant-1", issued.RefreshToken, in, nil)
	require.NoError(t, err)
	assert.NotEqual(t, issued.RefreshToken, rotated.RefreshToken)

	original := repo.byHash[svc.Digest(issued.RefreshToken)]
	assert.True(t, original.IsRevoked)
}

func TestRotate_ReplayRevokesEntireFamily(t *testing.T) {
	repo := newFakeRefreshRepo()
	svc := NewRefreshService(repo, []byte("pepper"))
	signer := testSigner(t)
	in := AccessTokenInput{UserID: "user-1", TenantID: "tenant-1"}

	issued, err := svc.IssueNewFamily(context.Background(), signer, in, nil)
	require.NoError(t, err)

	rotated, err := svc.Rotate(context.Background(), signer, "tenant-1", issued.RefreshToken, in, nil)
	require.NoError(t, err)

	recorder := events.NewRecorder("tenant-1")
	_, err = svc.Rotate(context.Background(), signer, "tenant-1", issued.RefreshToken, in, recorder)
	assert.ErrorIs(t, err, domain.ErrTokenReplay)

	rotatedRecord := repo.byHash[svc.Digest(rotated.RefreshToken)]
	assert.True(t, rotatedRecord.IsRevoked, "surviving token in the family must also be revoked")

	require.Len(t, recorder.Recorded(), 1)
	assert.Equal(t, events.TypeSecurityAlert, recorder.Recorded()[0].Type)
}

func TestRotate_UnknownTokenIsInvalid(t *testing.T) {
	repo := newFakeRefreshRepo()
	svc := NewRefreshService(repo, []byte("pepper"))
	signer := testSigner(t)

	_, err := svc.Rotate(context.Background(), signer, "tenant-1", "never-issued", AccessTokenInput{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestLogout_RevokesOnlyPresentedToken(t *testing.T) {
	repo := newFakeRefreshRepo()
	svc := NewRefreshService(repo, []byte("pepper"))
	signer := testSigner(t)
	in := AccessTokenInput{UserID: "user-1", TenantID: "tenant-1"}

	issued, err := svc.IssueNewFamily(context.Background(), signer, in, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "tenant-1", issued.RefreshToken))

	record := repo.byHash[svc.Digest(issued.RefreshToken)]
	assert.True(t, record.IsRevoked)
}

func TestMFAService_GeneratesVerifiableEnrollment(t *testing.T) {
	mfa := NewMFAService("taskforge-test")
	enrollment, err := mfa.GenerateEnrollment("user@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.Secret)
	assert.Contains(t, enrollment.URI, "otpauth://")
}
