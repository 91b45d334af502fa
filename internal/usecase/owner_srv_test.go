package usecase

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"identity-service/internal/data/entity"
	"identity-service/internal/dto/request"
	"identity-service/pkg/apperrors"
	"identity-service/pkg/token"
	"identity-service/pkg/types"
	"identity-service/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedOwner(store *fakeStore, email string, active bool) *entity.Owner {
	now := time.Now()
	owner := entity.Owner{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FullName:          "Asha Verma",
		Email:             email,
		PasswordHash:      "x",
		IsActive:          active,
		IsProfileComplete: active,
	}
	store.owners[owner.ID] = owner
	return &owner
}

func seedOwnerProfile(store *fakeStore, ownerID uuid.UUID, phone string) *entity.OwnerProfile {
	now := time.Now()
	profile := entity.OwnerProfile{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:     ownerID,
		Phone:       phone,
		CountryCode: "+91",
	}
	store.ownerProfiles[ownerID] = profile
	return &profile
}

// linkToken extracts the token query parameter from a verification link.
func linkToken(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	tok := u.Query().Get("token")
	require.NotEmpty(t, tok)
	return tok
}

func requireCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.CodeOf(err))
}

func TestOwnerUpdateAccount_EmailChangeRoundTrip(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	res, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		Email: types.Of("asha.new@example.com"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.EmailChangeLink)

	// Initiating must not touch the stored address, only the version.
	stored := store.owners[owner.ID]
	assert.Equal(t, "asha@example.com", stored.Email)
	assert.Equal(t, int64(1), stored.EmailVerifyVersion)
	assert.Equal(t, "asha@example.com", res.Owner.Email)

	confirmed, err := svc.Owner.ConfirmEmailChange(ctx, linkToken(t, res.EmailChangeLink))
	require.NoError(t, err)
	assert.Equal(t, "asha.new@example.com", confirmed.Email)

	stored = store.owners[owner.ID]
	assert.Equal(t, "asha.new@example.com", stored.Email)
	assert.Equal(t, int64(2), stored.EmailVerifyVersion)
}

func TestOwnerConfirmEmailChange_LinkIsSingleUse(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	res, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		Email: types.Of("asha.new@example.com"),
	})
	require.NoError(t, err)
	tok := linkToken(t, res.EmailChangeLink)

	_, err = svc.Owner.ConfirmEmailChange(ctx, tok)
	require.NoError(t, err)

	_, err = svc.Owner.ConfirmEmailChange(ctx, tok)
	requireCode(t, err, apperrors.CodeBadRequest)
	assert.Contains(t, err.Error(), "no longer valid")

	// Nothing changed on the failed second confirm.
	stored := store.owners[owner.ID]
	assert.Equal(t, "asha.new@example.com", stored.Email)
	assert.Equal(t, int64(2), stored.EmailVerifyVersion)
}

func TestOwnerUpdateAccount_SecondInitiateRetiresFirstLink(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	first, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		Email: types.Of("first@example.com"),
	})
	require.NoError(t, err)

	second, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		Email: types.Of("second@example.com"),
	})
	require.NoError(t, err)

	_, err = svc.Owner.ConfirmEmailChange(ctx, linkToken(t, first.EmailChangeLink))
	requireCode(t, err, apperrors.CodeBadRequest)

	confirmed, err := svc.Owner.ConfirmEmailChange(ctx, linkToken(t, second.EmailChangeLink))
	require.NoError(t, err)
	assert.Equal(t, "second@example.com", confirmed.Email)
	assert.Equal(t, int64(3), store.owners[owner.ID].EmailVerifyVersion)
}

func TestOwnerUpdateAccount_EmailAndPhoneMutuallyExclusive(t *testing.T) {
	svc, store, tokens := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	proof, err := tokens.SignPhoneProof("918888877777")
	require.NoError(t, err)

	_, err = svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		Email:      types.Of("asha.new@example.com"),
		PhoneToken: types.Of(proof),
	})
	requireCode(t, err, apperrors.CodeBadRequest)
	assert.Contains(t, err.Error(), "same request")

	// The rejected call leaves both identifiers and the version untouched.
	stored := store.owners[owner.ID]
	assert.Equal(t, "asha@example.com", stored.Email)
	assert.Equal(t, int64(0), stored.EmailVerifyVersion)
	assert.Equal(t, "919876543210", store.ownerProfiles[owner.ID].Phone)
}

func TestOwnerUpdateAccount_PhoneChange(t *testing.T) {
	svc, store, tokens := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	proof, err := tokens.SignPhoneProof("918888877777")
	require.NoError(t, err)

	res, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		PhoneToken: types.Of(proof),
	})
	require.NoError(t, err)
	assert.True(t, res.PhoneChanged)
	assert.Equal(t, "918888877777", store.ownerProfiles[owner.ID].Phone)
	assert.Empty(t, res.EmailChangeLink)
}

func TestOwnerUpdateAccount_SamePhoneIsNotAChange(t *testing.T) {
	svc, store, tokens := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	proof, err := tokens.SignPhoneProof("919876543210")
	require.NoError(t, err)

	// A proof for the current phone plus a real field change goes through
	// without being treated as a phone change.
	res, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		PhoneToken: types.Of(proof),
		FullName:   types.Of("Asha V"),
	})
	require.NoError(t, err)
	assert.False(t, res.PhoneChanged)
	assert.Equal(t, "Asha V", store.owners[owner.ID].FullName)
}

func TestOwnerUpdateAccount_PhoneTakenByOtherOwner(t *testing.T) {
	svc, store, tokens := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")
	other := seedOwner(store, "ravi@example.com", true)
	seedOwnerProfile(store, other.ID, "918888877777")

	proof, err := tokens.SignPhoneProof("918888877777")
	require.NoError(t, err)

	_, err = svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		PhoneToken: types.Of(proof),
	})
	requireCode(t, err, apperrors.CodeConflict)
	assert.Contains(t, err.Error(), "phone number already in use")
	assert.Equal(t, "919876543210", store.ownerProfiles[owner.ID].Phone)
}

func TestOwnerUpdateAccount_ConcurrentSamePhone(t *testing.T) {
	svc, store, tokens := newTestService()
	ctx := context.Background()

	a := seedOwner(store, "a@example.com", true)
	seedOwnerProfile(store, a.ID, "911111111111")
	b := seedOwner(store, "b@example.com", true)
	seedOwnerProfile(store, b.ID, "922222222222")

	proofA, err := tokens.SignPhoneProof("933333333333")
	require.NoError(t, err)
	proofB, err := tokens.SignPhoneProof("933333333333")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, in := range []struct {
		id    uuid.UUID
		proof string
	}{{a.ID, proofA}, {b.ID, proofB}} {
		wg.Add(1)
		go func(i int, id uuid.UUID, proof string) {
			defer wg.Done()
			_, errs[i] = svc.Owner.UpdateAccount(ctx, id, &request.OwnerUpdateRequest{
				PhoneToken: types.Of(proof),
			})
		}(i, in.id, in.proof)
	}
	wg.Wait()

	var conflicts, successes int
	for _, err := range errs {
		if err == nil {
			successes++
		} else if apperrors.HasCode(err, apperrors.CodeConflict) {
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	holders := 0
	for _, p := range store.ownerProfiles {
		if p.Phone == "933333333333" {
			holders++
		}
	}
	assert.Equal(t, 1, holders)
}

func TestOwnerUpdateAccount_TriStateShortBio(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	_, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		ShortBio: types.Of("Runs a tea stall in Pune."),
	})
	require.NoError(t, err)
	require.NotNil(t, store.ownerProfiles[owner.ID].ShortBio)

	// Absent field leaves the bio alone.
	_, err = svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		FullName: types.Of("Asha V"),
	})
	require.NoError(t, err)
	require.NotNil(t, store.ownerProfiles[owner.ID].ShortBio)

	// Explicit null clears it.
	_, err = svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		ShortBio: types.Null[string](),
	})
	require.NoError(t, err)
	assert.Nil(t, store.ownerProfiles[owner.ID].ShortBio)
}

func TestOwnerUpdateAccount_NoChanges(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	_, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{})
	requireCode(t, err, apperrors.CodeBadRequest)
	assert.Contains(t, err.Error(), "no changes")

	// Email equal to the stored one is not a change either.
	_, err = svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		Email: types.Of("asha@example.com"),
	})
	requireCode(t, err, apperrors.CodeBadRequest)
	assert.Equal(t, int64(0), store.owners[owner.ID].EmailVerifyVersion)
}

func TestOwnerUpdateAccount_EmailTaken(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")
	seedOwner(store, "taken@example.com", true)

	_, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		Email: types.Of("taken@example.com"),
	})
	requireCode(t, err, apperrors.CodeConflict)
	assert.Contains(t, err.Error(), "email address already in use")
	assert.Equal(t, int64(0), store.owners[owner.ID].EmailVerifyVersion)
}

func TestOwnerUpdateAccount_InactiveAccountCannotChangeEmail(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", false)

	_, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		Email: types.Of("asha.new@example.com"),
	})
	requireCode(t, err, apperrors.CodeForbidden)
	assert.Equal(t, int64(0), store.owners[owner.ID].EmailVerifyVersion)
}

func TestOwnerUpdateAccount_ValidationRejectsNullRequiredField(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	_, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		FullName: types.Null[string](),
	})
	requireCode(t, err, apperrors.CodeBadRequest)
	assert.Contains(t, err.Error(), "fullName")
}

func TestOwnerUpdateAccount_UnverifiedPhoneProofRejected(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	claims := token.PhoneProofClaims{
		Phone:      "918888877777",
		IsVerified: false,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		PhoneToken: types.Of(forged),
	})
	requireCode(t, err, apperrors.CodeBadRequest)
	assert.Contains(t, err.Error(), "invalid phone verification token")
}

func TestOwnerUpdateAccount_ExpiredPhoneProof(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	expiredSigner := token.NewService(utils.TokenConfig{
		Secret:               "test-secret",
		PhoneProofTTLMinutes: -1,
	})
	proof, err := expiredSigner.SignPhoneProof("918888877777")
	require.NoError(t, err)

	_, err = svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		PhoneToken: types.Of(proof),
	})
	requireCode(t, err, apperrors.CodeBadRequest)
	assert.Contains(t, err.Error(), "expired")
}

func TestOwnerUpdateAccount_UnavailableWithoutSecret(t *testing.T) {
	store := newFakeStore()
	config := testConfig()
	config.Token.Secret = ""
	svc := NewService(store.repository(), token.NewService(config.Token), config, zap.NewNop())
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	_, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		PhoneToken: types.Of("anything"),
	})
	requireCode(t, err, apperrors.CodeUnavailable)
}

func TestOwnerConfirmEmailChange_EmailMismatch(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)
	seedOwnerProfile(store, owner.ID, "919876543210")

	res, err := svc.Owner.UpdateAccount(ctx, owner.ID, &request.OwnerUpdateRequest{
		Email: types.Of("asha.new@example.com"),
	})
	require.NoError(t, err)

	// The stored address moves out from under the link, version untouched.
	stored := store.owners[owner.ID]
	stored.Email = "support-changed@example.com"
	store.owners[owner.ID] = stored

	_, err = svc.Owner.ConfirmEmailChange(ctx, linkToken(t, res.EmailChangeLink))
	requireCode(t, err, apperrors.CodeBadRequest)
	assert.Contains(t, err.Error(), "has changed since")
}

func TestOwnerConfirmEmailChange_RejectsCustomerToken(t *testing.T) {
	svc, store, tokens := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", true)

	tok, err := tokens.SignEmailChange("customer", owner.ID, "new@example.com", "asha@example.com", 0)
	require.NoError(t, err)

	_, err = svc.Owner.ConfirmEmailChange(ctx, tok)
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestOwnerCompleteOnboarding(t *testing.T) {
	svc, store, tokens := newTestService()
	ctx := context.Background()

	owner := seedOwner(store, "asha@example.com", false)
	proof, err := tokens.SignPhoneProof("919876543210")
	require.NoError(t, err)

	gst := "22AAAAA0000A1Z5"
	res, err := svc.Owner.CompleteOnboarding(ctx, owner.ID, &request.OwnerOnboardingRequest{
		PhoneToken:  proof,
		CountryCode: "+91",
		GSTNumber:   &gst,
	})
	require.NoError(t, err)
	assert.True(t, res.IsActive)
	assert.True(t, res.IsProfileComplete)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "919876543210", res.Profile.Phone)

	// Running onboarding again must not create a second profile.
	proof2, err := tokens.SignPhoneProof("918888877777")
	require.NoError(t, err)
	_, err = svc.Owner.CompleteOnboarding(ctx, owner.ID, &request.OwnerOnboardingRequest{
		PhoneToken:  proof2,
		CountryCode: "+91",
	})
	requireCode(t, err, apperrors.CodeConflict)
	assert.Contains(t, err.Error(), "profile already exists")
}

func TestOwnerCompleteOnboarding_GSTTaken(t *testing.T) {
	svc, store, tokens := newTestService()
	ctx := context.Background()

	gst := "22AAAAA0000A1Z5"
	first := seedOwner(store, "first@example.com", true)
	profile := seedOwnerProfile(store, first.ID, "911111111111")
	profile.GSTNumber = &gst
	store.ownerProfiles[first.ID] = *profile

	second := seedOwner(store, "second@example.com", false)
	proof, err := tokens.SignPhoneProof("922222222222")
	require.NoError(t, err)

	_, err = svc.Owner.CompleteOnboarding(ctx, second.ID, &request.OwnerOnboardingRequest{
		PhoneToken:  proof,
		CountryCode: "+91",
		GSTNumber:   &gst,
	})
	requireCode(t, err, apperrors.CodeConflict)
	assert.Contains(t, err.Error(), "GST number already in use")
	assert.False(t, store.owners[second.ID].IsActive)
}

func TestOwnerGetProfile_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Owner.GetProfile(context.Background(), uuid.New())
	requireCode(t, err, apperrors.CodeNotFound)
}
