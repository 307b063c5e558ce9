package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	RelayHandler  *RelayHandler
	HealthHandler *HealthHandler
}
