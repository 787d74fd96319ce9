package main

import "github.com/centuriocontact-dev/matching-interim-api/internal/app"

func main() {
	app.Run()
}
