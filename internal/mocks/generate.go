// Package mocks provides generated mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks
// for the hexagonal port interfaces. Hand-written doubles for simpler cases
// live in the auth subpackage.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockVault := mocks.NewMockVault(ctrl)
//	mockVault.EXPECT().Get(gomock.Any(), "key").Return("", false, nil)
package mocks

// Generate mocks for the port interfaces: Authenticator, Vault, and
// SSOProvider.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=ports_mock.go github.com/proxymarket/admin-api/internal/ports Authenticator,Vault,SSOProvider
