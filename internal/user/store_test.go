package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/redmonkez12/eats-api/internal/database"
	"github.com/redmonkez12/eats-api/internal/database/testutil"
	"github.com/redmonkez12/eats-api/internal/logging"
	"github.com/redmonkez12/eats-api/internal/password"
	"github.com/redmonkez12/eats-api/internal/verification"
)

type sentMail struct {
	To   string
	Code string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendVerificationEmail(_ context.Context, toEmail, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: toEmail, Code: code})
	return m.err
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

var testParams = password.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func setupStore(t *testing.T) (*Store, *verification.Ledger, *recordingMailer) {
	t.Helper()

	db := testutil.NewTestDB(t)
	ledger := verification.NewLedger(db)
	mailer := &recordingMailer{}
	store := NewStore(db, ledger, password.NewHasher(testParams), mailer, logging.Discard(), 0)
	return store, ledger, mailer
}

func TestRegisterAndVerifyCredentials(t *testing.T) {
	store, ledger, mailer := setupStore(t)
	ctx := context.Background()

	id, err := store.Register(ctx, "a@x.com", "pw1", RoleOwner)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := store.VerifyCredentials(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	require.Equal(t, id, got)

	code, err := ledger.Lookup(ctx, id)
	require.NoError(t, err)
	require.Equal(t, sentMail{To: "a@x.com", Code: code}, mailer.last())

	view, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", view.Email)
	require.Equal(t, RoleOwner, view.Role)
	require.False(t, view.Verified)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Register(ctx, "a@x.com", "pw1", RoleOwner)
	require.NoError(t, err)

	_, err = store.Register(ctx, "a@x.com", "other", RoleClient)
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterValidation(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Register(ctx, "a@x.com", "pw", Role("Admin"))
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = store.Register(ctx, "a@x.com", "", RoleClient)
	require.ErrorIs(t, err, ErrPasswordRequired)
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	store, _, mailer := setupStore(t)
	mailer.err = errors.New("smtp down")

	id, err := store.Register(context.Background(), "a@x.com", "pw1", RoleClient)
	require.NoError(t, err)

	_, err = store.FindByID(context.Background(), id)
	require.NoError(t, err)
}

func TestRegisterSendsEvenWhenRequestCancelled(t *testing.T) {
	store, _, mailer := setupStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	var sendCtxErr error
	store.mailer = mailerFunc(func(sendCtx context.Context, to, code string) error {
		cancel()
		sendCtxErr = sendCtx.Err()
		return mailer.SendVerificationEmail(sendCtx, to, code)
	})

	_, err := store.Register(ctx, "a@x.com", "pw1", RoleClient)
	require.NoError(t, err)
	require.NoError(t, sendCtxErr)
	require.Len(t, mailer.sent, 1)
}

type mailerFunc func(ctx context.Context, to, code string) error

func (f mailerFunc) SendVerificationEmail(ctx context.Context, to, code string) error {
	return f(ctx, to, code)
}

func TestVerifyCredentialsFailures(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Register(ctx, "a@x.com", "pw1", RoleClient)
	require.NoError(t, err)

	_, err = store.VerifyCredentials(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrWrongCredentials)

	_, err = store.VerifyCredentials(ctx, "nobody@x.com", "pw1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyCredentialsUpgradesLegacyHash(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.Register(ctx, "legacy@x.com", "pw1", RoleClient)
	require.NoError(t, err)

	legacy, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.users.UpdatePassword(ctx, store.db, id, string(legacy)))

	got, err := store.VerifyCredentials(ctx, "legacy@x.com", "pw1")
	require.NoError(t, err)
	require.Equal(t, id, got)

	stored, err := store.users.GetByID(ctx, store.db, id)
	require.NoError(t, err)
	require.Contains(t, stored.PasswordHash, "$argon2id$")
	require.False(t, store.hasher.NeedsRehash(stored.PasswordHash))
}

func TestUpdateEmailReplacesCode(t *testing.T) {
	store, ledger, mailer := setupStore(t)
	ctx := context.Background()

	id, err := store.Register(ctx, "a@x.com", "pw1", RoleClient)
	require.NoError(t, err)
	oldCode := mailer.last().Code

	require.NoError(t, store.UpdateEmail(ctx, id, "b@x.com"))
	newCode := mailer.last().Code
	require.NotEqual(t, oldCode, newCode)
	require.Equal(t, "b@x.com", mailer.last().To)

	live, err := ledger.Lookup(ctx, id)
	require.NoError(t, err)
	require.Equal(t, newCode, live)

	_, err = store.VerifyEmail(ctx, oldCode)
	require.ErrorIs(t, err, verification.ErrNotFound)

	got, err := store.VerifyEmail(ctx, newCode)
	require.NoError(t, err)
	require.Equal(t, id, got)

	view, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	require.True(t, view.Verified)
	require.Equal(t, "b@x.com", view.Email)
}

func TestUpdateEmailResetsVerified(t *testing.T) {
	store, _, mailer := setupStore(t)
	ctx := context.Background()

	id, err := store.Register(ctx, "a@x.com", "pw1", RoleClient)
	require.NoError(t, err)
	_, err = store.VerifyEmail(ctx, mailer.last().Code)
	require.NoError(t, err)

	require.NoError(t, store.UpdateEmail(ctx, id, "c@x.com"))

	view, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	require.False(t, view.Verified)
}

func TestUpdateEmailCollision(t *testing.T) {
	store, ledger, _ := setupStore(t)
	ctx := context.Background()

	first, err := store.Register(ctx, "a@x.com", "pw1", RoleClient)
	require.NoError(t, err)
	_, err = store.Register(ctx, "b@x.com", "pw2", RoleClient)
	require.NoError(t, err)

	before, err := ledger.Lookup(ctx, first)
	require.NoError(t, err)

	require.ErrorIs(t, store.UpdateEmail(ctx, first, "b@x.com"), ErrDuplicateEmail)

	after, err := ledger.Lookup(ctx, first)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestUpdateEmailUnknownUser(t *testing.T) {
	store, _, _ := setupStore(t)
	require.ErrorIs(t, store.UpdateEmail(context.Background(), 999, "z@x.com"), ErrNotFound)
}

func TestUpdatePassword(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.Register(ctx, "a@x.com", "pw1", RoleClient)
	require.NoError(t, err)

	require.NoError(t, store.UpdatePassword(ctx, id, "pw2"))

	_, err = store.VerifyCredentials(ctx, "a@x.com", "pw1")
	require.ErrorIs(t, err, ErrWrongCredentials)
	got, err := store.VerifyCredentials(ctx, "a@x.com", "pw2")
	require.NoError(t, err)
	require.Equal(t, id, got)

	require.ErrorIs(t, store.UpdatePassword(ctx, 999, "pw3"), ErrNotFound)
}

func TestResendVerification(t *testing.T) {
	store, _, mailer := setupStore(t)
	ctx := context.Background()

	id, err := store.Register(ctx, "a@x.com", "pw1", RoleClient)
	require.NoError(t, err)
	first := mailer.last().Code

	require.NoError(t, store.ResendVerification(ctx, id))
	second := mailer.last().Code
	require.NotEqual(t, first, second)

	_, err = store.VerifyEmail(ctx, first)
	require.ErrorIs(t, err, verification.ErrNotFound)
	_, err = store.VerifyEmail(ctx, second)
	require.NoError(t, err)

	require.ErrorIs(t, store.ResendVerification(ctx, id), ErrAlreadyVerified)
}

func TestOperationFailedWrapsInfrastructureErrors(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.db.NewDropTable().Model((*database.Verification)(nil)).Exec(ctx)
	require.NoError(t, err)

	_, err = store.Register(ctx, "a@x.com", "pw1", RoleClient)
	require.ErrorIs(t, err, ErrOperationFailed)

	// the user insert rolled back with the failed code insert
	_, err = store.VerifyCredentials(ctx, "a@x.com", "pw1")
	require.ErrorIs(t, err, ErrNotFound)
}
