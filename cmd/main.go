package main

import (
	"github.com/kirastore/backend/internal/app"
	"github.com/kirastore/backend/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
