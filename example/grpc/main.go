package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func main() {
	addr := flag.String("addr", "localhost:9090", "gRPC server address")
	service := flag.String("service", "image_api.v1.Frames", "Health service name; empty for the whole server")
	watch := flag.Duration("watch", 0, "Keep watching status changes for this long")
	flag.Parse()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("Failed to close connection: %v", err)
		}
	}()

	client := healthpb.NewHealthClient(conn)

	// Тест 1: разовая проверка
	fmt.Println("=== Check ===")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	check(ctx, client, *service)

	if *watch <= 0 {
		return
	}

	// Тест 2: подписка на изменения статуса
	fmt.Println("\n=== Watch ===")
	watchCtx, watchCancel := context.WithTimeout(context.Background(), *watch)
	defer watchCancel()
	watchStatus(watchCtx, client, *service)
}

func check(ctx context.Context, client healthpb.HealthClient, service string) {
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		printError(err)
		return
	}
	fmt.Printf("Status: %s\n", resp.Status)
}

func watchStatus(ctx context.Context, client healthpb.HealthClient, service string) {
	stream, err := client.Watch(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		printError(err)
		return
	}

	for {
		resp, err := stream.Recv()
		if err == io.EOF || ctx.Err() != nil {
			return
		}
		if err != nil {
			printError(err)
			return
		}
		fmt.Printf("%s  %s\n", time.Now().Format(time.RFC3339), resp.Status)
	}
}

func printError(err error) {
	if st, ok := status.FromError(err); ok {
		log.Printf("gRPC error: %s (code: %s)", st.Message(), st.Code())
	} else {
		log.Printf("Error: %v", err)
	}
}
