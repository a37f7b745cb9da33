// Command api serves the order API directly, without the CLI.
package main

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/bakery/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
