package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/dm-chat/modules/accounts"
	"github.com/example/dm-chat/modules/broadcast"
	"github.com/example/dm-chat/modules/chat"
	"github.com/example/dm-chat/modules/gateway"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== DM Chat - Real-Time Direct Messaging Backend ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	accountsModule := accounts.NewModule()
	chatModule := chat.NewModule()
	broadcastModule := broadcast.NewModule()
	gatewayModule := gateway.NewModule()

	// Inject the broadcast registry into the gateway module
	// (done manually because the registry is not exposed via ServiceContainer)
	gatewayModule.SetRegistry(broadcastModule.GetRegistry())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - accounts: identity, tokens, contact list (ServiceProviderModule)
	// - chat: conversations and messages (ServiceProviderModule + EventEmitterModule)
	// - broadcast: group fan-out (EventConsumerModule)
	// - gateway: Fiber HTTP/WebSocket edge (depends on accounts and chat)
	app.Register(accountsModule)
	app.Register(chatModule)
	app.Register(broadcastModule)
	app.Register(gatewayModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Event Bus: NATS JetStream (internal pubsub)")
	log.Printf("  - NATS URL: %s", natsURL)
	log.Println("")
	log.Println("Message flow:")
	log.Println("  - WebSocket frame -> chat module (persist) -> MessageStored event")
	log.Println("  - MessageStored event -> broadcast module -> conversation group -> sessions")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                      - Health check")
	log.Println("  POST   /api/v1/auth/register        - Create an account")
	log.Println("  POST   /api/v1/auth/login           - Obtain a token pair")
	log.Println("  POST   /api/v1/auth/refresh         - Refresh a token pair")
	log.Println("  GET    /api/v1/users                - Contact list (Bearer token)")
	log.Println("  GET    /api/v1/chats/:recipient_id  - Open or fetch a conversation (Bearer token)")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws/chat/:conversation_id):", port)
	log.Println("  Connect with: ws://localhost:3000/ws/chat/<conversation_id>?token=<access_token>")
	log.Println("  Inbound frame:  {\"message\": \"...\", \"recipient_id\": \"...\"}")
	log.Println("  Outbound types: connected, message, error")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
