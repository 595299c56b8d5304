package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"ecomart/internal/config"
	"ecomart/internal/handler"
	"ecomart/internal/infra/db"
	infrageo "ecomart/internal/infra/geo"
	infraidentity "ecomart/internal/infra/identity"
	inframail "ecomart/internal/infra/mail"
	infrapayment "ecomart/internal/infra/payment"
	infrarepo "ecomart/internal/infra/repository"
	"ecomart/internal/middleware"
	"ecomart/internal/server"
	"ecomart/internal/usecase"
	"ecomart/internal/worker"
)

func main() {
	// .envは開発時だけ。無くても環境変数があれば動く。
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load failed")
	}
	if cfg.GoEnv == "dev" {
		logger = logger.Level(zerolog.DebugLevel)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect failed")
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal().Err(err).Msg("db migrate failed")
	}
	if err := db.SeedOrderStatuses(gormDB); err != nil {
		logger.Fatal().Err(err).Msg("order status seed failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 外部ID基盤のクライアントはここで一度だけ作って注入する
	verifier, err := infraidentity.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("identity verifier init failed")
	}

	geocoder := infrageo.NewMapboxClient(cfg.MapboxAPIKey)
	gateway := infrapayment.NewPayOSClient(cfg.PayOSClientID, cfg.PayOSAPIKey, cfg.PayOSChecksumKey)
	sender := inframail.NewSMTPSender(cfg.SMTPHost, fmt.Sprintf("%d", cfg.SMTPPort), cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	//Repository（GORM実装）生成
	userRepo := infrarepo.NewUserGormRepository(gormDB)
	storeRepo := infrarepo.NewStoreGormRepository(gormDB)
	productRepo := infrarepo.NewProductGormRepository(gormDB)
	categoryRepo := infrarepo.NewCategoryGormRepository(gormDB)
	conditionRepo := infrarepo.NewProductConditionGormRepository(gormDB)
	orderStatusRepo := infrarepo.NewOrderStatusGormRepository(gormDB)
	cartRepo := infrarepo.NewCartGormRepository(gormDB)
	cartItemRepo := infrarepo.NewCartItemGormRepository(gormDB)
	orderRepo := infrarepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infrarepo.NewOrderItemGormRepository(gormDB)
	voucherRepo := infrarepo.NewVoucherGormRepository(gormDB)
	commentRepo := infrarepo.NewCommentGormRepository(gormDB)
	deliveryRepo := infrarepo.NewDeliveryInfoGormRepository(gormDB)
	outboxRepo := infrarepo.NewOutboxGormRepository(gormDB)
	auditRepo := infrarepo.NewAuditLogGormRepository(gormDB)
	txManager := infrarepo.NewTxManagerGorm(gormDB)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(verifier, userRepo, cartRepo)
	catalogUC := usecase.NewCatalogUsecase(categoryRepo, conditionRepo, orderStatusRepo)
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, conditionRepo, storeRepo, commentRepo, auditRepo)
	storeUC := usecase.NewStoreUsecase(storeRepo, productRepo, orderRepo, orderStatusRepo, auditRepo, geocoder)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo, storeRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, orderItemRepo, productRepo, storeRepo, userRepo, voucherRepo, deliveryRepo, cartRepo, geocoder)
	commentUC := usecase.NewCommentUsecase(commentRepo, productRepo, orderItemRepo, userRepo)
	deliveryUC := usecase.NewDeliveryUsecase(deliveryRepo, geocoder)
	voucherUC := usecase.NewVoucherUsecase(voucherRepo)
	paymentUC := usecase.NewPaymentUsecase(txManager, orderRepo, userRepo, deliveryRepo, gateway, cfg.PayOSReturnURL, cfg.PayOSCancelURL)

	//Handler生成
	handlers := server.Handlers{
		Auth:     handler.NewAuthHandler(authUC),
		Product:  handler.NewProductHandler(productUC, commentUC),
		Store:    handler.NewStoreHandler(storeUC, productUC),
		Cart:     handler.NewCartHandler(cartUC),
		Order:    handler.NewOrderHandler(orderUC, paymentUC),
		Delivery: handler.NewDeliveryHandler(deliveryUC),
		Voucher:  handler.NewVoucherHandler(voucherUC),
		Catalog:  handler.NewCatalogHandler(catalogUC),
	}

	authMW := middleware.Auth(verifier, userRepo, cartRepo)
	srv := server.New(logger, authMW, handlers)

	//outbox workerはサーバーと同じライフサイクルで回す
	outboxWorker := worker.NewOutboxWorker(outboxRepo, sender, logger)
	go outboxWorker.Run(ctx)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server started")
		if err := srv.Start(addr); err != nil {
			logger.Info().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
