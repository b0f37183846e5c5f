package git

// MockOps is a mock implementation of Operations for testing.
type MockOps struct {
	Repository bool
	Changed    []string
	ChangedErr error
	Hash       string
}

// NewMockOps creates a mock representing a clean repository at a fixed
// commit.
func NewMockOps() *MockOps {
	return &MockOps{
		Repository: true,
		Changed:    nil,
		Hash:       "0123456789abcdef0123456789abcdef01234567",
	}
}

func (m *MockOps) IsRepository(root string) bool {
	return m.Repository
}

func (m *MockOps) ChangedFiles(root string, extensions []string) ([]string, error) {
	if m.ChangedErr != nil {
		return nil, m.ChangedErr
	}
	return m.Changed, nil
}

func (m *MockOps) CommitHash(root string) string {
	return m.Hash
}
