package notify

import "github.com/storegate-io/storegate/internal/domain"

// NoopNotifier discards every notification. Domain services take the
// Notifier interface, so tests that don't care about fan-out inject this.
type NoopNotifier struct{}

func (NoopNotifier) TenantCreated(*domain.Tenant) {}
func (NoopNotifier) TenantUpdated(*domain.Tenant) {}
func (NoopNotifier) TenantRemoved(string)         {}

func (NoopNotifier) ProductCreated(*domain.Product, string) {}
func (NoopNotifier) ProductUpdated(*domain.Product, string) {}
func (NoopNotifier) ProductRemoved(string, string)          {}

func (NoopNotifier) SupplierCreated(*domain.Supplier, string) {}
func (NoopNotifier) SupplierUpdated(*domain.Supplier, string) {}
func (NoopNotifier) SupplierRemoved(string, string)           {}

func (NoopNotifier) UserUpdated(*domain.User, string) {}
func (NoopNotifier) UserRemoved(string, string)       {}

// Verify that NoopNotifier implements the Notifier interface at compile time
var _ Notifier = NoopNotifier{}
