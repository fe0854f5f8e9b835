package service

import (
	"errors"
	"log"
	"strings"
	"time"

	"account-hub/internal/auth"
	"account-hub/internal/models"
	"account-hub/internal/session"
	"account-hub/internal/store"

	"github.com/google/uuid"
)

// AccountService orchestrates registration, login and profile edits. It owns
// input validation and the role-locking invariant; uniqueness and durability
// live in the store, token integrity in the issuer.
type AccountService struct {
	store      store.Store
	issuer     *session.Issuer
	hasher     *auth.Hasher
	privileged map[string]bool
}

func NewAccountService(st store.Store, issuer *session.Issuer, hasher *auth.Hasher, privilegedNames []string) *AccountService {
	priv := make(map[string]bool, len(privilegedNames))
	for _, n := range privilegedNames {
		if norm := models.Normalize(n); norm != "" {
			priv[norm] = true
		}
	}
	return &AccountService{
		store:      st,
		issuer:     issuer,
		hasher:     hasher,
		privileged: priv,
	}
}

type RegisterInput struct {
	FullName  string
	Email     string
	Password  string
	Phone     string
	Location  string
	Role      string
	AvatarURL string
}

type ProfileEdits struct {
	FullName  string
	Email     string
	Phone     string
	Location  string
	Role      string
	AvatarURL string
}

// Register creates an account and a session for it. No partial account is
// ever persisted: every check runs before the single store insert.
func (s *AccountService) Register(in RegisterInput) (*models.Account, string, error) {
	in.FullName = trim(in.FullName)
	in.Email = trim(in.Email)

	if in.FullName == "" {
		return nil, "", errMissingField("fullName")
	}
	if in.Email == "" {
		return nil, "", errMissingField("email")
	}
	if in.Password == "" {
		return nil, "", errMissingField("password")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		log.Printf("register: hash failed: %v", err)
		return nil, "", errStoreUnavailable()
	}

	acc := &models.Account{
		ID:           uuid.New().String(),
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        trim(in.Phone),
		Location:     trim(in.Location),
		AvatarURL:    trim(in.AvatarURL),
		Role:         s.lockRole(in.Role, in.FullName),
		MemberSince:  time.Now().Format("2006-01"),
		PasswordHash: hash,
	}

	if err := s.store.Insert(acc); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, "", errDuplicateEmail()
		}
		log.Printf("register: insert failed: %v", err)
		return nil, "", errStoreUnavailable()
	}

	token, err := s.issuer.Issue(acc.ID, acc.Email)
	if err != nil {
		log.Printf("register: issue token failed: %v", err)
		return nil, "", errStoreUnavailable()
	}
	return acc, token, nil
}

// Login verifies credentials against an account found by email or full name.
// A lookup miss and a password mismatch return the same error, with a dummy
// hash comparison on the miss path so the two cost about the same.
func (s *AccountService) Login(identifier, password string) (*models.Account, string, error) {
	identifier = trim(identifier)
	if identifier == "" {
		return nil, "", errMissingField("identifier")
	}
	if password == "" {
		return nil, "", errMissingField("password")
	}

	acc, err := s.store.FindByIdentity(identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, "", errInvalidCredentials()
		}
		log.Printf("login: lookup failed: %v", err)
		return nil, "", errStoreUnavailable()
	}

	if !s.hasher.Verify(password, acc.PasswordHash) {
		return nil, "", errInvalidCredentials()
	}

	token, err := s.issuer.Issue(acc.ID, acc.Email)
	if err != nil {
		log.Printf("login: issue token failed: %v", err)
		return nil, "", errStoreUnavailable()
	}
	return acc, token, nil
}

// ListPublic returns the public directory: id, name and email only.
func (s *AccountService) ListPublic() ([]models.Summary, error) {
	accs, err := s.store.List()
	if err != nil {
		log.Printf("list: %v", err)
		return nil, errStoreUnavailable()
	}
	out := make([]models.Summary, 0, len(accs))
	for i := range accs {
		out = append(out, accs[i].Summary())
	}
	return out, nil
}

// Authenticate is the gate every profile-mutating operation goes through:
// token signature and lifetime via the issuer, then existence in the store.
func (s *AccountService) Authenticate(token string) (*models.Account, error) {
	accountID, _, err := s.issuer.Verify(token)
	if err != nil {
		return nil, errUnauthorized()
	}
	acc, err := s.store.FindByID(accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errUnauthorized()
		}
		log.Printf("authenticate: lookup failed: %v", err)
		return nil, errStoreUnavailable()
	}
	return acc, nil
}

// UpdateProfile applies edits to the given (already authenticated) account.
// The role lock is checked against both the stored name and the edited name:
// if either is unprivileged the role collapses to member. Password is not
// touched here.
func (s *AccountService) UpdateProfile(acc *models.Account, edits ProfileEdits) (*models.Account, error) {
	edits.FullName = trim(edits.FullName)
	edits.Email = trim(edits.Email)

	if edits.FullName == "" {
		return nil, errMissingField("fullName")
	}
	if edits.Email == "" {
		return nil, errMissingField("email")
	}

	updated := *acc
	updated.FullName = edits.FullName
	updated.Email = edits.Email
	updated.Phone = trim(edits.Phone)
	updated.Location = trim(edits.Location)
	updated.AvatarURL = trim(edits.AvatarURL)

	role := edits.Role
	if role == "" {
		role = acc.Role
	}
	if !s.isPrivilegedName(acc.FullName) || !s.isPrivilegedName(edits.FullName) {
		role = models.RoleMember
	}
	updated.Role = normalizeRole(role)

	if err := s.store.Update(&updated); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			return nil, errDuplicateEmail()
		case errors.Is(err, store.ErrNotFound):
			return nil, errNotFound()
		}
		log.Printf("update profile: %v", err)
		return nil, errStoreUnavailable()
	}
	return &updated, nil
}

// ChangePassword re-hashes and persists a new password after verifying the
// old one.
func (s *AccountService) ChangePassword(acc *models.Account, oldPassword, newPassword string) error {
	if oldPassword == "" {
		return errMissingField("oldPassword")
	}
	if newPassword == "" {
		return errMissingField("newPassword")
	}
	if len(newPassword) < 6 {
		return &Error{Kind: KindMissingField, Message: "newPassword must be at least 6 characters"}
	}

	if !s.hasher.Verify(oldPassword, acc.PasswordHash) {
		return errInvalidCredentials()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		log.Printf("change password: hash failed: %v", err)
		return errStoreUnavailable()
	}

	updated := *acc
	updated.PasswordHash = hash
	if err := s.store.Update(&updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errNotFound()
		}
		log.Printf("change password: %v", err)
		return errStoreUnavailable()
	}
	acc.PasswordHash = hash
	return nil
}

// SetRole is the explicit elevation path: only an admin actor may assign a
// role, regardless of what the target account is named.
func (s *AccountService) SetRole(actor *models.Account, targetID, role string) (*models.Account, error) {
	if actor.Role != models.RoleAdmin {
		return nil, errUnauthorized()
	}

	target, err := s.store.FindByID(targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errNotFound()
		}
		log.Printf("set role: lookup failed: %v", err)
		return nil, errStoreUnavailable()
	}

	target.Role = normalizeRole(role)
	if err := s.store.Update(target); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errNotFound()
		}
		log.Printf("set role: %v", err)
		return nil, errStoreUnavailable()
	}
	return target, nil
}

// lockRole enforces the registration invariant: only accounts whose
// normalized name is on the privileged allowlist may hold a non-default
// role.
func (s *AccountService) lockRole(requested, fullName string) string {
	if !s.isPrivilegedName(fullName) {
		return models.RoleMember
	}
	return normalizeRole(requested)
}

func (s *AccountService) isPrivilegedName(name string) bool {
	return s.privileged[models.Normalize(name)]
}

// normalizeRole maps the free-form role field onto the known enum; anything
// unrecognized falls back to member.
func normalizeRole(role string) string {
	switch models.Normalize(role) {
	case models.RoleAdmin, "administrator":
		return models.RoleAdmin
	default:
		return models.RoleMember
	}
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
