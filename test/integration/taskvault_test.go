// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

//go:build integration

package integration

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taskvault/taskvault/internal/auth"
	authpostgres "github.com/taskvault/taskvault/internal/auth/postgres"
	"github.com/taskvault/taskvault/internal/store"
	"github.com/taskvault/taskvault/internal/task"
	taskpostgres "github.com/taskvault/taskvault/internal/task/postgres"
)

var _ = Describe("TaskVault against PostgreSQL", Ordered, func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		container *pgcontainer.PostgresContainer
		pool      *pgxpool.Pool
		authSvc   *auth.Service
		taskSvc   *task.Service
		userRepo  *authpostgres.UserRepository
	)

	BeforeAll(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Minute)

		var err error
		container, err = pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("taskvault_test"),
			pgcontainer.WithUsername("taskvault"),
			pgcontainer.WithPassword("taskvault"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())

		pool, err = store.Connect(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())

		userRepo = authpostgres.NewUserRepository(pool)
		sessionRepo := authpostgres.NewSessionRepository(pool)
		taskRepo := taskpostgres.NewTaskRepository(pool)

		authSvc = auth.NewService(userRepo, sessionRepo, auth.NewArgon2idHasher())
		taskSvc = task.NewService(taskRepo)
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if container != nil {
			Expect(container.Terminate(ctx)).To(Succeed())
		}
		cancel()
	})

	Describe("registration", func() {
		It("creates an account and rejects the duplicate", func() {
			user, err := authSvc.Register(ctx, "alice", "secret123")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Username).To(Equal("alice"))
			Expect(user.PasswordHash).To(HavePrefix("$argon2id$"))

			_, err = authSvc.Register(ctx, "alice", "othersecret")
			Expect(err).To(MatchError(auth.ErrDuplicateUsername))
		})

		It("treats usernames case-sensitively", func() {
			_, err := authSvc.Register(ctx, "Alice", "secret123")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("login and session resolution", func() {
		var token string

		It("issues a resolvable session token", func() {
			session, issued, err := authSvc.Login(ctx, "alice", "secret123")
			Expect(err).NotTo(HaveOccurred())
			Expect(issued).To(HaveLen(64))
			Expect(session.ExpiresAt).To(BeNil())
			token = issued

			resolved, err := authSvc.Resolve(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Username).To(Equal("alice"))
		})

		It("rejects wrong credentials", func() {
			_, _, err := authSvc.Login(ctx, "alice", "wrongpass")
			Expect(err).To(HaveOccurred())

			_, _, err = authSvc.Login(ctx, "nobody", "secret123")
			Expect(err).To(HaveOccurred())
		})

		It("invalidates the session on logout", func() {
			Expect(authSvc.Logout(ctx, token)).To(Succeed())

			_, err := authSvc.Resolve(ctx, token)
			Expect(err).To(HaveOccurred())

			// Logging out again is fine.
			Expect(authSvc.Logout(ctx, token)).To(Succeed())
		})
	})

	Describe("task lifecycle", func() {
		var (
			bobID  ulid.ULID
			eveID  ulid.ULID
			taskID ulid.ULID
		)

		BeforeAll(func() {
			bob, err := authSvc.Register(ctx, "bob", "secret123")
			Expect(err).NotTo(HaveOccurred())
			bobID = bob.ID

			eve, err := authSvc.Register(ctx, "eve", "secret123")
			Expect(err).NotTo(HaveOccurred())
			eveID = eve.ID
		})

		It("starts with an empty list", func() {
			tasks, err := taskSvc.List(ctx, bobID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(BeEmpty())
		})

		It("creates and lists a task", func() {
			desc := "two liters"
			created, err := taskSvc.Create(ctx, bobID, "buy milk", &desc)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Completed).To(BeFalse())
			taskID = created.ID

			tasks, err := taskSvc.List(ctx, bobID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))
			Expect(tasks[0].Title).To(Equal("buy milk"))
			Expect(*tasks[0].Description).To(Equal("two liters"))
		})

		It("toggles completion atomically in the database", func() {
			toggled, err := taskSvc.ToggleCompletion(ctx, bobID, taskID)
			Expect(err).NotTo(HaveOccurred())
			Expect(toggled.Completed).To(BeTrue())

			toggled, err = taskSvc.ToggleCompletion(ctx, bobID, taskID)
			Expect(err).NotTo(HaveOccurred())
			Expect(toggled.Completed).To(BeFalse())
		})

		It("hides bob's task from eve", func() {
			tasks, err := taskSvc.List(ctx, eveID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(BeEmpty())

			_, err = taskSvc.ToggleCompletion(ctx, eveID, taskID)
			Expect(err).To(MatchError(task.ErrNotFound))

			// Eve's delete silently touches nothing.
			Expect(taskSvc.Delete(ctx, eveID, taskID)).To(Succeed())

			tasks, err = taskSvc.List(ctx, bobID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))
		})

		It("deletes the task permissively", func() {
			Expect(taskSvc.Delete(ctx, bobID, taskID)).To(Succeed())
			Expect(taskSvc.Delete(ctx, bobID, taskID)).To(Succeed())

			tasks, err := taskSvc.List(ctx, bobID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(BeEmpty())
		})
	})

	Describe("referential integrity", func() {
		It("cascade-deletes tasks and sessions with the user", func() {
			carol, err := authSvc.Register(ctx, "carol", "secret123")
			Expect(err).NotTo(HaveOccurred())

			_, err = taskSvc.Create(ctx, carol.ID, "doomed task", nil)
			Expect(err).NotTo(HaveOccurred())

			_, token, err := authSvc.Login(ctx, "carol", "secret123")
			Expect(err).NotTo(HaveOccurred())

			Expect(userRepo.Delete(ctx, carol.ID)).To(Succeed())

			tasks, err := taskSvc.List(ctx, carol.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(BeEmpty())

			_, err = authSvc.Resolve(ctx, token)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("schema migrations", func() {
		It("reports a clean version after Up", func() {
			connStr, err := container.ConnectionString(ctx, "sslmode=disable")
			Expect(err).NotTo(HaveOccurred())

			migrator, err := store.NewMigrator(connStr)
			Expect(err).NotTo(HaveOccurred())
			defer migrator.Close()

			version, dirty, err := migrator.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(dirty).To(BeFalse())
			Expect(version).To(BeNumerically(">=", 1))
		})
	})
})
