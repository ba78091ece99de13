// cmd/adduser/main.go
// Creates or updates an account and its profile, useful for bootstrapping
// the first admin.
//
// Usage:
//
//	go run ./cmd/adduser -username dmitry -password testing123 -role admin
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmpolyakov/racingclub/config"
	bundb "github.com/dmpolyakov/racingclub/db"
	"github.com/dmpolyakov/racingclub/models"
	"github.com/dmpolyakov/racingclub/profiles"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	role := flag.String("role", models.RoleUser, "role: user, jockey or admin")
	email := flag.String("email", "", "email address")
	first := flag.String("first", "", "first name")
	last := flag.String("last", "", "last name")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("both -username and -password are required")
	}
	if !models.ValidRole(*role) {
		log.Fatalf("invalid role %q, must be user, jockey or admin", *role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("bcrypt:", err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables:", err)
	}

	user := &models.User{
		Username:  *username,
		Password:  string(hash),
		Email:     *email,
		FirstName: *first,
		LastName:  *last,
	}

	_, err = db.NewInsert().Model(user).
		On("CONFLICT (username) DO UPDATE SET password = EXCLUDED.password").
		Exec(ctx)
	if err != nil {
		log.Fatal("insert user:", err)
	}

	profile, err := profiles.Ensure(ctx, db, *username)
	if err != nil {
		log.Fatal("ensure profile:", err)
	}
	if err := profiles.SetRole(ctx, db, profile, *role); err != nil {
		log.Fatal("set role:", err)
	}

	fmt.Printf("user %q saved with role %q\n", *username, *role)
}
