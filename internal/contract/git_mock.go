package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock of GitClient.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

func bytesOrNil(v any) []byte {
	b, _ := v.([]byte)
	return b
}

func stringsOrNil(v any) []string {
	s, _ := v.([]string)
	return s
}

// Exec mocks the GitClient method.
func (m *MockGitClient) Exec(ctx context.Context, repoPath string, args ...string) *ExecResult {
	callArgs := []any{ctx, repoPath}
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	ret := m.Called(callArgs...)
	res, _ := ret.Get(0).(*ExecResult)
	return res
}

// Run mocks the GitClient method.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	callArgs := []any{ctx, repoPath}
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	ret := m.Called(callArgs...)
	return bytesOrNil(ret.Get(0)), ret.Error(1)
}

// GetVersion mocks the GitClient method.
func (m *MockGitClient) GetVersion(ctx context.Context) (string, error) {
	ret := m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

// GetRepoRoot mocks the GitClient method.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetCurrentBranch mocks the GitClient method.
func (m *MockGitClient) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// ListRemotes mocks the GitClient method.
func (m *MockGitClient) ListRemotes(ctx context.Context, repoPath string) ([]string, error) {
	ret := m.Called(ctx, repoPath)
	return stringsOrNil(ret.Get(0)), ret.Error(1)
}

// ListRemoteBranchRefs mocks the GitClient method.
func (m *MockGitClient) ListRemoteBranchRefs(ctx context.Context, repoPath string) ([]string, error) {
	ret := m.Called(ctx, repoPath)
	return stringsOrNil(ret.Get(0)), ret.Error(1)
}

// ListContainingBranchRefs mocks the GitClient method.
func (m *MockGitClient) ListContainingBranchRefs(ctx context.Context, repoPath string, hash string) ([]string, error) {
	ret := m.Called(ctx, repoPath, hash)
	return stringsOrNil(ret.Get(0)), ret.Error(1)
}

// GetBranchLog mocks the GitClient method.
func (m *MockGitClient) GetBranchLog(ctx context.Context, repoPath string, ref string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, ref)
	return bytesOrNil(ret.Get(0)), ret.Error(1)
}

// GetParentGraph mocks the GitClient method.
func (m *MockGitClient) GetParentGraph(ctx context.Context, repoPath string, ref string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, ref)
	return bytesOrNil(ret.Get(0)), ret.Error(1)
}

// GetCommitDetail mocks the GitClient method.
func (m *MockGitClient) GetCommitDetail(ctx context.Context, repoPath string, hash string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, hash)
	return bytesOrNil(ret.Get(0)), ret.Error(1)
}

// Checkout mocks the GitClient method.
func (m *MockGitClient) Checkout(ctx context.Context, repoPath string, branch string) error {
	return m.Called(ctx, repoPath, branch).Error(0)
}

// Fetch mocks the GitClient method.
func (m *MockGitClient) Fetch(ctx context.Context, repoPath string, all bool) error {
	return m.Called(ctx, repoPath, all).Error(0)
}

// Pull mocks the GitClient method.
func (m *MockGitClient) Pull(ctx context.Context, repoPath string, all bool) error {
	return m.Called(ctx, repoPath, all).Error(0)
}
