// Package memory keeps every repository in process memory. It backs the
// server when STORAGE=memory and serves as the fake for service and
// handler tests.
package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

var (
	_ ports.UserRepository    = (*UserRepository)(nil)
	_ ports.ProductRepository = (*ProductRepository)(nil)
	_ ports.SessionRepository = (*SessionRepository)(nil)
	_ ports.FeatureRepository = (*FeatureRepository)(nil)
	_ ports.VoteRepository    = (*VoteRepository)(nil)
	_ ports.RoleRepository    = (*RoleRepository)(nil)
)

type voteKey struct {
	featureID uuid.UUID
	userID    uuid.UUID
}

type stakeholderKey struct {
	productID uuid.UUID
	email     string
}

// Store is the shared state behind the repositories returned by its
// accessor methods.
type Store struct {
	mu sync.RWMutex

	users         map[uuid.UUID]domain.User
	products      map[uuid.UUID]domain.Product
	sessions      map[uuid.UUID]domain.VotingSession
	features      map[uuid.UUID]domain.Feature
	votes         map[voteKey]domain.VoteRecord
	systemAdmins  map[uuid.UUID]struct{}
	productOwners map[domain.ProductOwnerGrant]struct{}
	stakeholders  map[stakeholderKey]domain.StakeholderGrant
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]domain.User),
		products:      make(map[uuid.UUID]domain.Product),
		sessions:      make(map[uuid.UUID]domain.VotingSession),
		features:      make(map[uuid.UUID]domain.Feature),
		votes:         make(map[voteKey]domain.VoteRecord),
		systemAdmins:  make(map[uuid.UUID]struct{}),
		productOwners: make(map[domain.ProductOwnerGrant]struct{}),
		stakeholders:  make(map[stakeholderKey]domain.StakeholderGrant),
	}
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }
func (s *Store) Sessions() *SessionRepository { return &SessionRepository{s: s} }
func (s *Store) Features() *FeatureRepository { return &FeatureRepository{s: s} }
func (s *Store) Votes() *VoteRepository { return &VoteRepository{s: s} }
func (s *Store) Roles() *RoleRepository { return &RoleRepository{s: s} }

func sortByCreated[T any](items []T, created func(T) (int64, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := created(items[i])
		tj, idj := created(items[j])
		if ti != tj {
			return ti < tj
		}
		return idi < idj
	})
}
