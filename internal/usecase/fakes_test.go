package usecase

import (
	"context"
	"sync"
	"time"

	"identity-service/internal/data/entity"
	"identity-service/internal/data/repository"
	"identity-service/pkg/token"
	"identity-service/pkg/types"
	"identity-service/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeStore is an in-memory stand-in for the database. The fake repos
// enforce the same uniqueness rules the real constraints do, using the
// same error constructors, so services cannot tell the two apart.
type fakeStore struct {
	mu               sync.Mutex
	owners           map[uuid.UUID]entity.Owner
	ownerProfiles    map[uuid.UUID]entity.OwnerProfile
	customers        map[uuid.UUID]entity.Customer
	customerProfiles map[uuid.UUID]entity.CustomerProfile
	sessions         map[uuid.UUID]entity.Session
	otps             []entity.OTP
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		owners:           make(map[uuid.UUID]entity.Owner),
		ownerProfiles:    make(map[uuid.UUID]entity.OwnerProfile),
		customers:        make(map[uuid.UUID]entity.Customer),
		customerProfiles: make(map[uuid.UUID]entity.CustomerProfile),
		sessions:         make(map[uuid.UUID]entity.Session),
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore()
	for k, v := range s.owners {
		cp.owners[k] = v
	}
	for k, v := range s.ownerProfiles {
		cp.ownerProfiles[k] = v
	}
	for k, v := range s.customers {
		cp.customers[k] = v
	}
	for k, v := range s.customerProfiles {
		cp.customerProfiles[k] = v
	}
	for k, v := range s.sessions {
		cp.sessions[k] = v
	}
	cp.otps = append(cp.otps, s.otps...)
	return cp
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.owners = snap.owners
	s.ownerProfiles = snap.ownerProfiles
	s.customers = snap.customers
	s.customerProfiles = snap.customerProfiles
	s.sessions = snap.sessions
	s.otps = snap.otps
}

func (s *fakeStore) repository() *repository.Repository {
	r := &repository.Repository{
		Owner:           &fakeOwnerRepo{s: s},
		OwnerProfile:    &fakeOwnerProfileRepo{s: s},
		Customer:        &fakeCustomerRepo{s: s},
		CustomerProfile: &fakeCustomerProfileRepo{s: s},
		Session:         &fakeSessionRepo{s: s},
		OTP:             &fakeOTPRepo{s: s},
	}
	r.Tx = &fakeTxManager{s: s}
	return r
}

// fakeTxManager serializes transactions with a mutex, the way row locks
// do in the real store, and rolls back by restoring a snapshot when the
// body fails.
type fakeTxManager struct {
	s *fakeStore
}

func (m *fakeTxManager) InTx(ctx context.Context, fn func(r *repository.Repository) error) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	snap := m.s.snapshot()
	r := m.s.repository()
	r.Tx = &reentrantFakeTx{r: r}
	if err := fn(r); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

type reentrantFakeTx struct {
	r *repository.Repository
}

func (t *reentrantFakeTx) InTx(ctx context.Context, fn func(r *repository.Repository) error) error {
	return fn(t.r)
}

func applyOpt(dst **string, opt types.Optional[string]) {
	if !opt.IsSet() {
		return
	}
	if opt.IsNull() {
		*dst = nil
		return
	}
	v, _ := opt.Get()
	*dst = &v
}

// --- owner ---

type fakeOwnerRepo struct {
	s *fakeStore
}

func (f *fakeOwnerRepo) Create(ctx context.Context, owner *entity.Owner) error {
	for _, o := range f.s.owners {
		if o.Email == owner.Email {
			return repository.ErrEmailInUse()
		}
	}
	f.s.owners[owner.ID] = *owner
	return nil
}

func (f *fakeOwnerRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	if o, ok := f.s.owners[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (f *fakeOwnerRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeOwnerRepo) FindByEmail(ctx context.Context, email string) (*entity.Owner, error) {
	for _, o := range f.s.owners {
		if o.Email == email {
			cp := o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOwnerRepo) ApplyChanges(ctx context.Context, id uuid.UUID, changes entity.OwnerChanges) error {
	o := f.s.owners[id]
	if v, ok := changes.FullName.Get(); ok {
		o.FullName = v
	}
	o.UpdatedAt = time.Now()
	f.s.owners[id] = o
	return nil
}

func (f *fakeOwnerRepo) MarkOnboarded(ctx context.Context, id uuid.UUID) error {
	o := f.s.owners[id]
	o.IsActive = true
	o.IsProfileComplete = true
	f.s.owners[id] = o
	return nil
}

func (f *fakeOwnerRepo) BumpEmailVersion(ctx context.Context, id uuid.UUID) (int64, string, error) {
	o := f.s.owners[id]
	o.EmailVerifyVersion++
	f.s.owners[id] = o
	return o.EmailVerifyVersion, o.Email, nil
}

func (f *fakeOwnerRepo) ApplyEmailChange(ctx context.Context, id uuid.UUID, newEmail string) error {
	for oid, o := range f.s.owners {
		if oid != id && o.Email == newEmail {
			return repository.ErrEmailInUse()
		}
	}
	o := f.s.owners[id]
	o.Email = newEmail
	o.EmailVerifyVersion++
	f.s.owners[id] = o
	return nil
}

type fakeOwnerProfileRepo struct {
	s *fakeStore
}

func (f *fakeOwnerProfileRepo) Create(ctx context.Context, profile *entity.OwnerProfile) error {
	if _, ok := f.s.ownerProfiles[profile.OwnerID]; ok {
		return repository.ErrProfileExists()
	}
	for _, p := range f.s.ownerProfiles {
		if p.Phone == profile.Phone {
			return repository.ErrPhoneInUse()
		}
		if profile.GSTNumber != nil && p.GSTNumber != nil && *p.GSTNumber == *profile.GSTNumber {
			return repository.ErrGSTInUse()
		}
	}
	f.s.ownerProfiles[profile.OwnerID] = *profile
	return nil
}

func (f *fakeOwnerProfileRepo) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*entity.OwnerProfile, error) {
	if p, ok := f.s.ownerProfiles[ownerID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeOwnerProfileRepo) FindByPhone(ctx context.Context, phone string, excludeOwnerID uuid.UUID) (*entity.OwnerProfile, error) {
	for oid, p := range f.s.ownerProfiles {
		if oid != excludeOwnerID && p.Phone == phone {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOwnerProfileRepo) FindByGSTNumber(ctx context.Context, gstNumber string, excludeOwnerID uuid.UUID) (*entity.OwnerProfile, error) {
	for oid, p := range f.s.ownerProfiles {
		if oid != excludeOwnerID && p.GSTNumber != nil && *p.GSTNumber == gstNumber {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOwnerProfileRepo) ApplyChanges(ctx context.Context, ownerID uuid.UUID, changes entity.OwnerProfileChanges) error {
	p := f.s.ownerProfiles[ownerID]
	if changes.Phone != nil {
		for oid, other := range f.s.ownerProfiles {
			if oid != ownerID && other.Phone == *changes.Phone {
				return repository.ErrPhoneInUse()
			}
		}
		p.Phone = *changes.Phone
	}
	if v, ok := changes.CountryCode.Get(); ok {
		p.CountryCode = v
	}
	applyOpt(&p.PhotoURL, changes.PhotoURL)
	applyOpt(&p.ShortBio, changes.ShortBio)
	applyOpt(&p.Address, changes.Address)
	applyOpt(&p.PreferredLanguage, changes.PreferredLanguage)
	applyOpt(&p.GSTNumber, changes.GSTNumber)
	applyOpt(&p.GSTLegalName, changes.GSTLegalName)
	applyOpt(&p.GSTAddress, changes.GSTAddress)
	applyOpt(&p.GSTStateCode, changes.GSTStateCode)
	p.UpdatedAt = time.Now()
	f.s.ownerProfiles[ownerID] = p
	return nil
}

// --- customer ---

type fakeCustomerRepo struct {
	s *fakeStore
}

func (f *fakeCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	for _, c := range f.s.customers {
		if c.Email == customer.Email {
			return repository.ErrEmailInUse()
		}
	}
	f.s.customers[customer.ID] = *customer
	return nil
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	if c, ok := f.s.customers[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeCustomerRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeCustomerRepo) FindByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	for _, c := range f.s.customers {
		if c.Email == email {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomerRepo) ApplyChanges(ctx context.Context, id uuid.UUID, changes entity.CustomerChanges) error {
	c := f.s.customers[id]
	if v, ok := changes.FullName.Get(); ok {
		c.FullName = v
	}
	c.UpdatedAt = time.Now()
	f.s.customers[id] = c
	return nil
}

func (f *fakeCustomerRepo) MarkOnboarded(ctx context.Context, id uuid.UUID) error {
	c := f.s.customers[id]
	c.IsActive = true
	c.IsProfileComplete = true
	f.s.customers[id] = c
	return nil
}

func (f *fakeCustomerRepo) BumpEmailVersion(ctx context.Context, id uuid.UUID) (int64, string, error) {
	c := f.s.customers[id]
	c.EmailVerifyVersion++
	f.s.customers[id] = c
	return c.EmailVerifyVersion, c.Email, nil
}

func (f *fakeCustomerRepo) ApplyEmailChange(ctx context.Context, id uuid.UUID, newEmail string) error {
	for cid, c := range f.s.customers {
		if cid != id && c.Email == newEmail {
			return repository.ErrEmailInUse()
		}
	}
	c := f.s.customers[id]
	c.Email = newEmail
	c.EmailVerifyVersion++
	f.s.customers[id] = c
	return nil
}

type fakeCustomerProfileRepo struct {
	s *fakeStore
}

func (f *fakeCustomerProfileRepo) Create(ctx context.Context, profile *entity.CustomerProfile) error {
	if _, ok := f.s.customerProfiles[profile.CustomerID]; ok {
		return repository.ErrProfileExists()
	}
	for _, p := range f.s.customerProfiles {
		if p.Phone == profile.Phone {
			return repository.ErrPhoneInUse()
		}
	}
	f.s.customerProfiles[profile.CustomerID] = *profile
	return nil
}

func (f *fakeCustomerProfileRepo) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*entity.CustomerProfile, error) {
	if p, ok := f.s.customerProfiles[customerID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeCustomerProfileRepo) FindByPhone(ctx context.Context, phone string, excludeCustomerID uuid.UUID) (*entity.CustomerProfile, error) {
	for cid, p := range f.s.customerProfiles {
		if cid != excludeCustomerID && p.Phone == phone {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomerProfileRepo) ApplyChanges(ctx context.Context, customerID uuid.UUID, changes entity.CustomerProfileChanges) error {
	p := f.s.customerProfiles[customerID]
	if changes.Phone != nil {
		for cid, other := range f.s.customerProfiles {
			if cid != customerID && other.Phone == *changes.Phone {
				return repository.ErrPhoneInUse()
			}
		}
		p.Phone = *changes.Phone
	}
	if v, ok := changes.CountryCode.Get(); ok {
		p.CountryCode = v
	}
	applyOpt(&p.PhotoURL, changes.PhotoURL)
	applyOpt(&p.ShortBio, changes.ShortBio)
	applyOpt(&p.Address, changes.Address)
	applyOpt(&p.PreferredLanguage, changes.PreferredLanguage)
	p.UpdatedAt = time.Now()
	f.s.customerProfiles[customerID] = p
	return nil
}

// --- sessions / otps ---

type fakeSessionRepo struct {
	s *fakeStore
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	f.s.sessions[session.Token] = *session
	return nil
}

func (f *fakeSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}
	sess, ok := f.s.sessions[tokenUUID]
	if !ok || sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) {
		return nil, nil
	}
	return &sess, nil
}

func (f *fakeSessionRepo) Revoke(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return nil
	}
	if sess, ok := f.s.sessions[tokenUUID]; ok {
		now := time.Now()
		sess.RevokedAt = &now
		f.s.sessions[tokenUUID] = sess
	}
	return nil
}

func (f *fakeSessionRepo) RevokeAllAccountSessions(ctx context.Context, accountID uuid.UUID, accountType entity.AccountType) error {
	now := time.Now()
	for k, sess := range f.s.sessions {
		if sess.AccountID == accountID && sess.AccountType == accountType && sess.RevokedAt == nil {
			sess.RevokedAt = &now
			f.s.sessions[k] = sess
		}
	}
	return nil
}

type fakeOTPRepo struct {
	s *fakeStore
}

func (f *fakeOTPRepo) Create(ctx context.Context, otp *entity.OTP) error {
	f.s.otps = append(f.s.otps, *otp)
	return nil
}

func (f *fakeOTPRepo) FindValidOTP(ctx context.Context, accountID uuid.UUID, phone, otpCode string) (*entity.OTP, error) {
	for i := len(f.s.otps) - 1; i >= 0; i-- {
		otp := f.s.otps[i]
		if otp.AccountID == accountID && otp.Phone == phone && otp.OTPCode == otpCode &&
			!otp.IsUsed && time.Now().Before(otp.ExpiresAt) {
			return &otp, nil
		}
	}
	return nil, nil
}

func (f *fakeOTPRepo) MarkAsUsed(ctx context.Context, otpID uuid.UUID) error {
	for i := range f.s.otps {
		if f.s.otps[i].ID == otpID {
			f.s.otps[i].IsUsed = true
		}
	}
	return nil
}

// --- wiring ---

func testConfig() *utils.Config {
	return &utils.Config{
		App: utils.AppConfig{
			Name:    "identity-service",
			BaseURL: "http://localhost:8080",
		},
		Token: utils.TokenConfig{
			Secret:                "test-secret",
			EmailChangeTTLMinutes: 15,
			PhoneProofTTLMinutes:  30,
		},
		OTP: utils.OTPConfig{
			ExpiryMinutes: 10,
			Length:        6,
		},
	}
}

func newTestService() (*Service, *fakeStore, *token.Service) {
	store := newFakeStore()
	config := testConfig()
	tokens := token.NewService(config.Token)
	svc := NewService(store.repository(), tokens, config, zap.NewNop())
	return svc, store, tokens
}
