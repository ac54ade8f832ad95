package main

import (
	"fmt"
	"os"

	"github.com/Ultra-rd/Turkistn/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	// ローカル開発用に.envがあれば読み込む（本番環境では存在しない）
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
