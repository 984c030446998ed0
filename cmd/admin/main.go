package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"jobhunter/internal/auth"
	"jobhunter/internal/config"
	"jobhunter/internal/database"
)

// Bootstraps a reviewer account and mints an access token for it. Login
// endpoints are intentionally not part of this service, so this CLI is how an
// operator gets a token for a fresh deployment.
func main() {
	var (
		email     = flag.String("email", "", "account email (required)")
		name      = flag.String("name", "", "display name (defaults to the email)")
		role      = flag.String("role", "HR", "account role; HR is scoped to its company")
		companyID = flag.Uint("company-id", 0, "company the HR account reviews for (required for HR)")
		ttl       = flag.Duration("ttl", 24*time.Hour, "access token lifetime")
		keyPath   = flag.String("private-key", "", "RSA private key PEM (defaults to AUTH_PRIVATE_KEY_PATH)")
		dbHost    = flag.String("db-host", "", "database host (defaults to DATABASE_HOST)")
		dbPort    = flag.Int("db-port", 0, "database port (defaults to DATABASE_PORT)")
		dbName    = flag.String("db-name", "", "database name (defaults to POSTGRES_DB)")
		dbUser    = flag.String("db-user", "", "database user (defaults to POSTGRES_USER)")
		dbPass    = flag.String("db-password", "", "database password (defaults to POSTGRES_PASSWORD)")
		sslMode   = flag.String("db-sslmode", "", "database sslmode (defaults to DATABASE_SSLMODE)")
	)
	flag.Parse()

	mail := strings.TrimSpace(*email)
	if mail == "" {
		log.Fatal("missing required flag: --email")
	}
	if *role == "HR" && *companyID == 0 {
		log.Fatal("HR accounts need --company-id")
	}

	signer, err := loadSigner(*keyPath)
	if err != nil {
		log.Fatalf("load signer: %v", err)
	}

	dbCfg, err := loadDatabaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *sslMode)
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	var scope *uint
	if *companyID > 0 {
		id := *companyID
		scope = &id
	}

	user, err := findOrCreateUser(db, mail, strings.TrimSpace(*name), *role, scope)
	if err != nil {
		log.Fatalf("ensure user: %v", err)
	}

	token, err := signer.IssueAccessToken(user.ID, user.Email, user.Role, user.CompanyID, *ttl)
	if err != nil {
		log.Fatalf("issue access token: %v", err)
	}

	fmt.Printf("user id: %d\n", user.ID)
	fmt.Printf("email:   %s\n", user.Email)
	fmt.Printf("role:    %s\n", user.Role)
	if user.CompanyID != nil {
		fmt.Printf("company: %d\n", *user.CompanyID)
	}
	fmt.Printf("access token (expires in %s):\n%s\n", *ttl, token)
}

func loadSigner(keyPath string) (*auth.Signer, error) {
	if strings.TrimSpace(keyPath) == "" {
		keyPath = os.Getenv("AUTH_PRIVATE_KEY_PATH")
	}
	if strings.TrimSpace(keyPath) == "" {
		return nil, errors.New("private key path is required (--private-key or AUTH_PRIVATE_KEY_PATH)")
	}
	pem, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	return auth.NewSigner(pem)
}

func findOrCreateUser(db *gorm.DB, email, name, role string, companyID *uint) (*database.User, error) {
	var existing database.User
	switch err := db.Where("email = ?", email).First(&existing).Error; {
	case err == nil:
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("query user: %w", err)
	}

	if name == "" {
		name = email
	}
	user := database.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CompanyID: companyID,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Printf("created user %q with id %d", email, user.ID)
	return &user, nil
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	if strings.TrimSpace(host) == "" {
		host = os.Getenv("DATABASE_HOST")
	}
	if port <= 0 {
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("POSTGRES_DB")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("POSTGRES_USER")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("POSTGRES_PASSWORD")
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = os.Getenv("DATABASE_SSLMODE")
	}

	if strings.TrimSpace(host) == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 5432
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = "disable"
	}
	if strings.TrimSpace(name) == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if strings.TrimSpace(user) == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if strings.TrimSpace(password) == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}
