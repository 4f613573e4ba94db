package accounts

import (
	"encoding/json"
	"fmt"
	"os"
)

// Account is one registered Telegram account.
type Account struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// DisplayName returns the best human label for the account.
func (a Account) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Phone != "" {
		return a.Phone
	}
	return a.ID
}

// Registry is the on-disk account list (~/.vimgram/accounts.json).
type Registry struct {
	Active   string    `json:"active"`
	Accounts []Account `json:"accounts"`
}

// Load reads the registry from the base directory. A missing file yields
// an empty registry. A pre-multi-account layout (a bare session.db next
// to the config) is adopted as account "default" on first load.
func Load(base string) (*Registry, error) {
	data, err := os.ReadFile(RegistryPath(base))
	if os.IsNotExist(err) {
		return migrateLegacy(base)
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &r, nil
}

// migrateLegacy adopts a single-session layout into the registry format.
func migrateLegacy(base string) (*Registry, error) {
	r := &Registry{}
	legacy := LegacySessionPath(base)
	if _, err := os.Stat(legacy); err != nil {
		return r, nil
	}

	const id = "default"
	if err := EnsureDir(base, id); err != nil {
		return nil, fmt.Errorf("adopt legacy session: %w", err)
	}
	if err := os.Rename(legacy, SessionDBPath(base, id)); err != nil {
		return nil, fmt.Errorf("adopt legacy session: %w", err)
	}
	r.Accounts = append(r.Accounts, Account{ID: id, Phone: "Migrated", Name: "Default"})
	r.Active = id
	if err := r.Save(base); err != nil {
		return nil, err
	}
	return r, nil
}

// Save writes the registry atomically with 0600 permissions.
func (r *Registry) Save(base string) error {
	if err := os.MkdirAll(base, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	tmp := RegistryPath(base) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, RegistryPath(base))
}

// Add registers a new account, generating the next free account_N id,
// and returns it. The first account registered becomes active.
func (r *Registry) Add(phone, name string) Account {
	id := ""
	for n := len(r.Accounts) + 1; ; n++ {
		id = fmt.Sprintf("account_%d", n)
		if _, ok := r.Get(id); !ok {
			break
		}
	}
	acc := Account{ID: id, Phone: phone, Name: name}
	r.Accounts = append(r.Accounts, acc)
	if r.Active == "" {
		r.Active = acc.ID
	}
	return acc
}

// Remove deletes an account entry. Removing the active account clears
// the active marker.
func (r *Registry) Remove(id string) {
	kept := r.Accounts[:0]
	for _, a := range r.Accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	r.Accounts = kept
	if r.Active == id {
		r.Active = ""
	}
}

// SetActive marks an existing account as active.
func (r *Registry) SetActive(id string) error {
	if _, ok := r.Get(id); !ok {
		return fmt.Errorf("unknown account %q", id)
	}
	r.Active = id
	return nil
}

// Get returns the account with the given id.
func (r *Registry) Get(id string) (Account, bool) {
	for _, a := range r.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// ActiveAccount returns the currently active account.
func (r *Registry) ActiveAccount() (Account, bool) {
	return r.Get(r.Active)
}

// Resolve determines the account to run using precedence:
// 1. the --account flag
// 2. the registry's active marker
// 3. a sole registered account
// Returns "" when nothing matches; the caller starts the add flow.
func Resolve(flagOverride string, r *Registry) string {
	if flagOverride != "" {
		return flagOverride
	}
	if _, ok := r.ActiveAccount(); ok {
		return r.Active
	}
	if len(r.Accounts) == 1 {
		return r.Accounts[0].ID
	}
	return ""
}
