package ports_test

import (
	"testing"

	"github.com/target/pulsecare-portal/internal/adapters/filekv"
	"github.com/target/pulsecare-portal/internal/adapters/identityhttp"
	"github.com/target/pulsecare-portal/internal/adapters/memkv"
	redisadapter "github.com/target/pulsecare-portal/internal/adapters/redis"
	"github.com/target/pulsecare-portal/internal/mocks"
	authmocks "github.com/target/pulsecare-portal/internal/mocks/auth"
	"github.com/target/pulsecare-portal/internal/ports"
)

// This test only verifies that adapters and mocks conform to the ports at compile time.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.IdentityTransport = (*identityhttp.Client)(nil)
	var _ ports.IdentityTransport = (*mocks.MockIdentityTransport)(nil)
	var _ ports.IdentityTransport = (*authmocks.MockTransport)(nil)

	var _ ports.KeyValueStore = (*filekv.Store)(nil)
	var _ ports.KeyValueStore = (*memkv.Store)(nil)
	var _ ports.KeyValueStore = (*redisadapter.KVStore)(nil)
	var _ ports.KeyValueStore = (*authmocks.MemoryStore)(nil)
}
