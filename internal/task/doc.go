// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package task provides the owner-scoped task store. Every operation is
// filtered by the authenticated owner's id; no operation can observe or
// mutate another owner's tasks.
package task
