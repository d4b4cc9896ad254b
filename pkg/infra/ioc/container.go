// Package ioc wires the process's dependency graph with golobby's
// reflective container, the same fluent ContainerBuilder pattern this
// codebase has always used: each concern gets its own With*() method,
// dependencies are pulled out of the container by hand inside each
// resolver, and a registration failure is fatal at startup.
package ioc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/golobby/container/v3"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	common "github.com/stablepay/gateway/pkg/domain"
	paymentEntities "github.com/stablepay/gateway/pkg/domain/payment/entities"
	paymentIn "github.com/stablepay/gateway/pkg/domain/payment/ports/in"
	paymentOut "github.com/stablepay/gateway/pkg/domain/payment/ports/out"
	paymentServices "github.com/stablepay/gateway/pkg/domain/payment/services"

	ofacOut "github.com/stablepay/gateway/pkg/domain/ofac/ports/out"
	ofacServices "github.com/stablepay/gateway/pkg/domain/ofac/services"

	"github.com/stablepay/gateway/pkg/app/jobs"
	"github.com/stablepay/gateway/pkg/app/monitor"
	"github.com/stablepay/gateway/pkg/infra/chainadapters"
	"github.com/stablepay/gateway/pkg/infra/crypto"
	"github.com/stablepay/gateway/pkg/infra/db/mongodb"
)

// mongoDatabaseName is fixed rather than parsed out of DATABASE_URL: every
// deployment of this gateway owns a single dedicated database.
const mongoDatabaseName = "stablepay"

const mongoConnectTimeout = 10 * time.Second

// DefaultTenantID is the fixed identifier of the tenant bootstrapped on
// first boot, so single-tenant deployments never need a separate seed step.
var DefaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type ContainerBuilder struct {
	Container container.Container
}

func NewContainerBuilder() *ContainerBuilder {
	b := &ContainerBuilder{Container: container.New()}
	if err := b.Container.Singleton(func() container.Container { return b.Container }); err != nil {
		slog.Error("ioc: failed to self-register container", "error", err)
		panic(err)
	}
	return b
}

func (b *ContainerBuilder) Build() container.Container {
	return b.Container
}

// With is the generic escape hatch for one-off registrations that don't
// merit their own With*() method.
func (b *ContainerBuilder) With(resolver interface{}) *ContainerBuilder {
	if err := b.Container.Singleton(resolver); err != nil {
		slog.Error("ioc: failed to register resolver", "error", err)
		panic(err)
	}
	return b
}

// WithEnvFile loads .env when DEV_ENV=true, then registers common.Config.
func (b *ContainerBuilder) WithEnvFile() *ContainerBuilder {
	if os.Getenv("DEV_ENV") == "true" {
		if err := godotenv.Load(); err != nil {
			slog.Warn("ioc: no .env file loaded", "error", err)
		}
	}
	if err := b.Container.Singleton(func() (common.Config, error) {
		return EnvironmentConfig()
	}); err != nil {
		slog.Error("ioc: failed to register config", "error", err)
		panic(err)
	}
	return b
}

// WithStorage connects to MongoDB and registers the store as both its
// concrete type and the payment domain's out.Storage port.
func (b *ContainerBuilder) WithStorage() *ContainerBuilder {
	if err := b.Container.Singleton(func() (*mongo.Database, error) {
		var cfg common.Config
		if err := b.Container.Resolve(&cfg); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DatabaseURL))
		if err != nil {
			return nil, fmt.Errorf("ioc: connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, fmt.Errorf("ioc: ping mongo: %w", err)
		}
		return client.Database(mongoDatabaseName), nil
	}); err != nil {
		slog.Error("ioc: failed to register mongo database", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (*mongodb.Store, error) {
		var db *mongo.Database
		if err := b.Container.Resolve(&db); err != nil {
			return nil, err
		}
		return mongodb.NewStore(db), nil
	}); err != nil {
		slog.Error("ioc: failed to register store", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (paymentOut.Storage, error) {
		var store *mongodb.Store
		if err := b.Container.Resolve(&store); err != nil {
			return nil, err
		}
		return store, nil
	}); err != nil {
		slog.Error("ioc: failed to register payment storage port", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (*mongodb.OfacRepository, error) {
		var db *mongo.Database
		if err := b.Container.Resolve(&db); err != nil {
			return nil, err
		}
		return mongodb.NewOfacRepository(db), nil
	}); err != nil {
		slog.Error("ioc: failed to register ofac repository", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (ofacOut.Storage, error) {
		var repo *mongodb.OfacRepository
		if err := b.Container.Resolve(&repo); err != nil {
			return nil, err
		}
		return repo, nil
	}); err != nil {
		slog.Error("ioc: failed to register ofac storage port", "error", err)
		panic(err)
	}

	b.bootstrapDefaultTenant()

	return b
}

// bootstrapDefaultTenant seeds the "default" tenant idempotently so the
// single-tenant mode works without an external seed step. The API key is
// derived from SESSION_SECRET rather than randomly generated, so it is
// stable across restarts and reproducible offline; it is logged once here
// the only time it is ever recoverable in plaintext.
func (b *ContainerBuilder) bootstrapDefaultTenant() {
	var cfg common.Config
	if err := b.Container.Resolve(&cfg); err != nil {
		slog.Error("ioc: failed to resolve config for tenant bootstrap", "error", err)
		panic(err)
	}
	var storage paymentOut.Storage
	if err := b.Container.Resolve(&storage); err != nil {
		slog.Error("ioc: failed to resolve storage for tenant bootstrap", "error", err)
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	existing, err := storage.GetTenantByID(ctx, DefaultTenantID)
	if err != nil {
		slog.Error("ioc: failed to check for default tenant", "error", err)
		panic(err)
	}
	if existing != nil {
		return
	}

	apiKey := crypto.DeriveDefaultAPIKey(cfg.SessionSecret)
	tenant := paymentEntities.NewTenant("default", crypto.APIKeyDigest(apiKey))
	tenant.ID = DefaultTenantID
	tenant.WebhookURL = cfg.DefaultWebhookURL
	tenant.WebhookSecret = cfg.DefaultWebhookSecret
	tenant.ReceiverEVM = cfg.PaymentAddressEVM
	tenant.ReceiverTron = cfg.PaymentAddressTron

	if err := storage.SaveTenant(ctx, tenant); err != nil {
		slog.Error("ioc: failed to bootstrap default tenant", "error", err)
		panic(err)
	}
	slog.Info("ioc: bootstrapped default tenant", "tenant_id", tenant.ID, "api_key", apiKey)
}

// WithCrypto registers the address envelope, keyed by SESSION_SECRET.
func (b *ContainerBuilder) WithCrypto() *ContainerBuilder {
	if err := b.Container.Singleton(func() (*crypto.Envelope, error) {
		var cfg common.Config
		if err := b.Container.Resolve(&cfg); err != nil {
			return nil, err
		}
		return crypto.NewEnvelope(cfg.SessionSecret)
	}); err != nil {
		slog.Error("ioc: failed to register crypto envelope", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (paymentServices.Envelope, error) {
		var env *crypto.Envelope
		if err := b.Container.Resolve(&env); err != nil {
			return nil, err
		}
		return env, nil
	}); err != nil {
		slog.Error("ioc: failed to register envelope port", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (monitor.Envelope, error) {
		var env *crypto.Envelope
		if err := b.Container.Resolve(&env); err != nil {
			return nil, err
		}
		return env, nil
	}); err != nil {
		slog.Error("ioc: failed to register monitor envelope port", "error", err)
		panic(err)
	}

	return b
}

// WithOfac registers the sanctions screening service and its startup
// ingestion. Callers invoke StartupRefreshIfEmpty after Build().
func (b *ContainerBuilder) WithOfac() *ContainerBuilder {
	if err := b.Container.Singleton(func() (*ofacServices.Service, error) {
		var storage ofacOut.Storage
		if err := b.Container.Resolve(&storage); err != nil {
			return nil, err
		}
		return ofacServices.NewService(storage), nil
	}); err != nil {
		slog.Error("ioc: failed to register ofac service", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (paymentOut.OfacScreener, error) {
		var svc *ofacServices.Service
		if err := b.Container.Resolve(&svc); err != nil {
			return nil, err
		}
		return svc, nil
	}); err != nil {
		slog.Error("ioc: failed to register ofac screener port", "error", err)
		panic(err)
	}

	return b
}

// WithWebhooks registers the webhook engine, signed with the deterministic
// HMAC over the tenant's per-tenant webhook secret.
func (b *ContainerBuilder) WithWebhooks() *ContainerBuilder {
	if err := b.Container.Singleton(func() (*paymentServices.WebhookEngine, error) {
		var storage paymentOut.Storage
		if err := b.Container.Resolve(&storage); err != nil {
			return nil, err
		}
		return paymentServices.NewWebhookEngine(storage, crypto.WebhookSignature), nil
	}); err != nil {
		slog.Error("ioc: failed to register webhook engine", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (paymentIn.WebhookEngine, error) {
		var engine *paymentServices.WebhookEngine
		if err := b.Container.Resolve(&engine); err != nil {
			return nil, err
		}
		return engine, nil
	}); err != nil {
		slog.Error("ioc: failed to register webhook engine port", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (paymentOut.WebhookPublisher, error) {
		var engine *paymentServices.WebhookEngine
		if err := b.Container.Resolve(&engine); err != nil {
			return nil, err
		}
		return engine, nil
	}); err != nil {
		slog.Error("ioc: failed to register webhook publisher port", "error", err)
		panic(err)
	}

	return b
}

// WithSubscriptions registers the subscription engine.
func (b *ContainerBuilder) WithSubscriptions() *ContainerBuilder {
	if err := b.Container.Singleton(func() (paymentIn.SubscriptionEngine, error) {
		var storage paymentOut.Storage
		if err := b.Container.Resolve(&storage); err != nil {
			return nil, err
		}
		var publisher paymentOut.WebhookPublisher
		if err := b.Container.Resolve(&publisher); err != nil {
			return nil, err
		}
		return paymentServices.NewSubscriptionEngine(storage, publisher), nil
	}); err != nil {
		slog.Error("ioc: failed to register subscription engine", "error", err)
		panic(err)
	}
	return b
}

// WithChainAdapters registers one adapter per network and the map the
// Monitor dispatches against.
func (b *ContainerBuilder) WithChainAdapters() *ContainerBuilder {
	if err := b.Container.Singleton(func() (map[paymentEntities.Network]paymentOut.ChainAdapter, error) {
		var cfg common.Config
		if err := b.Container.Resolve(&cfg); err != nil {
			return nil, err
		}
		return map[paymentEntities.Network]paymentOut.ChainAdapter{
			paymentEntities.NetworkArbitrum: chainadapters.NewEVMAdapter(paymentEntities.NetworkArbitrum, cfg.AlchemyAPIKey),
			paymentEntities.NetworkEthereum: chainadapters.NewEVMAdapter(paymentEntities.NetworkEthereum, cfg.AlchemyAPIKey),
			paymentEntities.NetworkTron:     chainadapters.NewTronAdapter(cfg.TronGridAPIKey, cfg.RPCTron),
		}, nil
	}); err != nil {
		slog.Error("ioc: failed to register chain adapters", "error", err)
		panic(err)
	}
	return b
}

// WithPaymentsAndMonitor registers the payment engine and the Monitor,
// closing the cycle between them with SetMonitor after both exist. The
// engine is built first with monitor nil, the Monitor is built from the
// engine, then the engine's monitor field is patched in place.
func (b *ContainerBuilder) WithPaymentsAndMonitor() *ContainerBuilder {
	if err := b.Container.Singleton(func() (*paymentServices.PaymentEngine, error) {
		var cfg common.Config
		if err := b.Container.Resolve(&cfg); err != nil {
			return nil, err
		}
		var storage paymentOut.Storage
		if err := b.Container.Resolve(&storage); err != nil {
			return nil, err
		}
		var envelope paymentServices.Envelope
		if err := b.Container.Resolve(&envelope); err != nil {
			return nil, err
		}
		var ofac paymentOut.OfacScreener
		if err := b.Container.Resolve(&ofac); err != nil {
			return nil, err
		}
		var publisher paymentOut.WebhookPublisher
		if err := b.Container.Resolve(&publisher); err != nil {
			return nil, err
		}
		var subscriptions paymentIn.SubscriptionEngine
		if err := b.Container.Resolve(&subscriptions); err != nil {
			return nil, err
		}
		engine := paymentServices.NewPaymentEngine(storage, envelope, ofac, publisher, subscriptions, nil, cfg.PaymentAddressEVM, cfg.PaymentAddressTron)
		return engine, nil
	}); err != nil {
		slog.Error("ioc: failed to register payment engine", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (paymentIn.PaymentEngine, error) {
		var engine *paymentServices.PaymentEngine
		if err := b.Container.Resolve(&engine); err != nil {
			return nil, err
		}
		return engine, nil
	}); err != nil {
		slog.Error("ioc: failed to register payment engine port", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (*monitor.Monitor, error) {
		var storage paymentOut.Storage
		if err := b.Container.Resolve(&storage); err != nil {
			return nil, err
		}
		var engine paymentIn.PaymentEngine
		if err := b.Container.Resolve(&engine); err != nil {
			return nil, err
		}
		var envelope monitor.Envelope
		if err := b.Container.Resolve(&envelope); err != nil {
			return nil, err
		}
		var adapters map[paymentEntities.Network]paymentOut.ChainAdapter
		if err := b.Container.Resolve(&adapters); err != nil {
			return nil, err
		}
		var publisher paymentOut.WebhookPublisher
		if err := b.Container.Resolve(&publisher); err != nil {
			return nil, err
		}
		m := monitor.NewMonitor(storage, engine, envelope, adapters, publisher)

		var concreteEngine *paymentServices.PaymentEngine
		if err := b.Container.Resolve(&concreteEngine); err != nil {
			return nil, err
		}
		concreteEngine.SetMonitor(m)

		return m, nil
	}); err != nil {
		slog.Error("ioc: failed to register monitor", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (paymentOut.Enroller, error) {
		var m *monitor.Monitor
		if err := b.Container.Resolve(&m); err != nil {
			return nil, err
		}
		return m, nil
	}); err != nil {
		slog.Error("ioc: failed to register enroller port", "error", err)
		panic(err)
	}

	return b
}

// WithJobs registers the four periodic sweeps: expire-payments,
// expire-subscriptions, retry-webhooks and the daily OFAC refresh.
func (b *ContainerBuilder) WithJobs() *ContainerBuilder {
	if err := b.Container.Singleton(func() (*jobs.ExpirePaymentsJob, error) {
		var storage paymentOut.Storage
		if err := b.Container.Resolve(&storage); err != nil {
			return nil, err
		}
		var publisher paymentOut.WebhookPublisher
		if err := b.Container.Resolve(&publisher); err != nil {
			return nil, err
		}
		return jobs.NewExpirePaymentsJob(storage, publisher), nil
	}); err != nil {
		slog.Error("ioc: failed to register expire-payments job", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (*jobs.ExpireSubscriptionsJob, error) {
		var subscriptions paymentIn.SubscriptionEngine
		if err := b.Container.Resolve(&subscriptions); err != nil {
			return nil, err
		}
		return jobs.NewExpireSubscriptionsJob(subscriptions), nil
	}); err != nil {
		slog.Error("ioc: failed to register expire-subscriptions job", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (*jobs.WebhookRetryJob, error) {
		var webhookEngine paymentIn.WebhookEngine
		if err := b.Container.Resolve(&webhookEngine); err != nil {
			return nil, err
		}
		return jobs.NewWebhookRetryJob(webhookEngine), nil
	}); err != nil {
		slog.Error("ioc: failed to register webhook-retry job", "error", err)
		panic(err)
	}

	if err := b.Container.Singleton(func() (*jobs.OfacRefreshJob, error) {
		var svc *ofacServices.Service
		if err := b.Container.Resolve(&svc); err != nil {
			return nil, err
		}
		return jobs.NewOfacRefreshJob(svc), nil
	}); err != nil {
		slog.Error("ioc: failed to register ofac-refresh job", "error", err)
		panic(err)
	}

	return b
}
