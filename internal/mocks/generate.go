// Package mocks provides mock implementations for testing the watchdog pipeline.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockFailureRepository(ctrl)
//	mockRepo.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(records, nil)
package mocks

// Generate mock for FailureRepository interface from internal/core package.
// This creates MockFailureRepository with methods for all FailureRepository interface methods:
// Insert, List
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=failure_repository_mock.go github.com/marlinprotocol/oyster-watchdog/internal/core FailureRepository

// Generate mock for ChainSource interface from internal/core package.
// This creates MockChainSource with methods for all ChainSource interface methods:
// HeadBlock, JobOpenedEvents, ProviderURL
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=chain_source_mock.go github.com/marlinprotocol/oyster-watchdog/internal/core ChainSource
