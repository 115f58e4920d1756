package main

import (
	"go.uber.org/fx"

	"github.com/veggie-dogs/orders/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
