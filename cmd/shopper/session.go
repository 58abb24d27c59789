package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"philcali.me/groceries/internal/config"
	"philcali.me/groceries/internal/dynamodb/gateway"
	productData "philcali.me/groceries/internal/dynamodb/products"
	purchaseData "philcali.me/groceries/internal/dynamodb/purchases"
	"philcali.me/groceries/internal/dynamodb/token"
	"philcali.me/groceries/internal/identity"
	"philcali.me/groceries/internal/shopping"
	"philcali.me/groceries/internal/snapshot"
	"philcali.me/groceries/internal/suggestions"
)

// session is everything one command invocation works with. open restores the
// saved state and identity; close writes them back.
type session struct {
	cfg         config.Config
	log         *logrus.Logger
	store       *shopping.Store
	catalog     *shopping.Catalog
	slot        snapshot.Slot
	provider    *identity.Cognito
	suggestions *suggestions.Tracker
	unsubscribe func()
	tokensPath  string
	// unreadable keeps close from overwriting a snapshot that failed to load.
	unreadable bool
}

func loadConfig() (config.Config, error) {
	if flagConfig != "" {
		return config.LoadFrom(flagConfig)
	}
	return config.Load()
}

func newSlot(cfg config.Config) snapshot.Slot {
	if cfg.Snapshot.Backend == "redis" {
		namespace := cfg.Snapshot.Namespace
		if namespace == "" {
			namespace = "shopper"
		}
		return snapshot.NewRedisSlot(redis.NewClient(&redis.Options{Addr: cfg.Snapshot.RedisAddr}), namespace)
	}
	return snapshot.NewFileSlot(config.ConfigDir())
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := config.NewLogger(cfg.Log)
	s := &session{
		cfg:        cfg,
		log:        log,
		slot:       newSlot(cfg),
		tokensPath: filepath.Join(config.ConfigDir(), "tokens.json"),
	}
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	var gw shopping.Gateway
	if cfg.AWS.TableName != "" {
		client := dynamodb.NewFromConfig(awsCfg)
		marshaler := token.NewGCM()
		gw = gateway.NewDynamoDBGateway(
			purchaseData.NewPurchaseDynamoDBService(cfg.AWS.TableName, client, marshaler),
			productData.NewProductDynamoDBService(cfg.AWS.TableName, client, marshaler),
		)
	}
	s.store = shopping.NewStore(gw, shopping.WithLogger(log))
	s.catalog = shopping.NewCatalog(gw)
	bedrock := suggestions.NewBedrock(bedrockruntime.NewFromConfig(awsCfg), cfg.Suggestions.ModelId, log)
	if cfg.Suggestions.Limit > 0 {
		bedrock.Limit = cfg.Suggestions.Limit
	}
	s.suggestions = suggestions.NewTracker(bedrock)

	s.loadSnapshot(ctx)

	// Signed in sessions need somewhere to keep their history.
	if gw == nil || cfg.Auth.PoolURL == "" || cfg.Auth.ClientId == "" {
		return s, s.store.SetIdentity(ctx, nil)
	}
	s.provider = identity.NewCognito(
		cognitoidentityprovider.NewFromConfig(awsCfg),
		&http.Client{Timeout: 10 * time.Second},
		identity.CognitoOptions{
			ClientId:         cfg.Auth.ClientId,
			PoolURL:          cfg.Auth.PoolURL,
			RedirectURI:      cfg.Auth.RedirectURI,
			IdentityProvider: cfg.Auth.IdentityProvider,
		},
		log,
	)
	s.unsubscribe = s.provider.Subscribe(func(user *identity.User) {
		if err := s.store.SetIdentity(ctx, user); err != nil {
			config.LogError(log, "shopper", "SetIdentity", "history", nil, err)
		}
	})
	var tokens *identity.Tokens
	if !flagOffline {
		tokens = s.readTokens()
	}
	if _, err := s.provider.Restore(ctx, tokens); err != nil {
		fmt.Fprintf(os.Stderr, "  Could not restore your sign in, continuing as a guest: %v\n", err)
	}
	return s, nil
}

func (s *session) readTokens() *identity.Tokens {
	raw, err := os.ReadFile(s.tokensPath)
	if err != nil {
		return nil
	}
	var tokens identity.Tokens
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil
	}
	return &tokens
}

func (s *session) writeTokens() error {
	tokens := s.provider.Tokens()
	if tokens == nil {
		if err := os.Remove(s.tokensPath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	raw, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.tokensPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.tokensPath, raw, 0o600)
}

// close persists the session. A signed-in history lives in the gateway, so
// it is left out of the local snapshot.
func (s *session) loadSnapshot(ctx context.Context) bool {
	state, ok, err := s.slot.Load(ctx)
	if err != nil {
		s.unreadable = true
		s.log.WithField("funcName", "loadSnapshot").Warnf("Ignoring unreadable snapshot, it will be left untouched: %v", err)
		return false
	}
	if ok {
		s.store.Load(state)
	}
	return true
}

func (s *session) close(ctx context.Context) error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.unreadable {
		s.log.WithField("funcName", "close").Warn("Not saving session over an unreadable snapshot")
	} else {
		state := s.store.Snapshot()
		if s.store.Identity() != nil {
			state.PurchaseHistory = []shopping.Purchase{}
		}
		if err := s.slot.Save(ctx, state); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
	}
	if s.provider != nil && !flagOffline {
		if err := s.writeTokens(); err != nil {
			return fmt.Errorf("saving sign in: %w", err)
		}
	}
	return nil
}

// withSession opens the session, runs fn and always writes the session back,
// even when fn fails part way.
func withSession(fn func(ctx context.Context, s *session) error) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	runErr := fn(ctx, s)
	if err := s.close(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
