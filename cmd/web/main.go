// Command web запускает HTTP-сервер imgrelay.
package main

import "imgrelay/internal/app"

func main() {
	app.Run()
}
