package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port      string
	Neo4jURI  string
	Neo4jUser string
	Neo4jPass string

	// JWTSecret verifies bearer tokens issued by the identity provider.
	JWTSecret string

	// GithubAccessToken is the server-wide fallback credential used when a
	// project has no token of its own.
	GithubAccessToken  string
	GithubClientID     string
	GithubClientSecret string
	OAuthRedirectURL   string
	OAuthFinishURL     string

	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	TEIURL       string
	EmbeddingDim int
	AgentURL     string
	ReposPath    string
}

func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "3001"),
		Neo4jURI:  getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser: getEnv("NEO4J_USER", "neo4j"),
		Neo4jPass: getEnv("NEO4J_PASSWORD", "trackhub_password"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		GithubAccessToken:  getEnv("GITHUB_ACCESS_TOKEN", ""),
		GithubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GithubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", "http://localhost:3001/api/github/oauth/callback"),
		OAuthFinishURL:     getEnv("OAUTH_FINISH_URL", "http://localhost:3000/github/commit"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/billing?success=1"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/billing?canceled=1"),

		TEIURL:       getEnv("TEI_URL", "http://localhost:8080"),
		EmbeddingDim: getEnvInt("EMBEDDING_DIM", 768),
		AgentURL:     getEnv("AGENT_URL", "http://localhost:8001"),
		ReposPath:    getEnv("REPOS_PATH", "./repos"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
