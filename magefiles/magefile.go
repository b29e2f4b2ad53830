//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the arbor project using Mage.
//
// Usage:
//
//	mage build        Compile the arbor binary to bin/
//	mage install      Install arbor to GOPATH/bin
//	mage clean        Remove build artifacts and the local tree data
//	mage serve        Build and run the HTTP server
//	mage test:all     Run all tests
//	mage test:short   Run tests without the randomized and multi-backend suites
//	mage test:race    Run all tests with the race detector
//	mage test:cover   Run all tests and write coverage.out
//	mage lint         Run golangci-lint
//	mage vet          Run go vet
package main
