package httpserver

import "github.com/Skotchmaster/game_store/internal/service"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreatePurchaseRequest struct {
	Items []service.ItemInput `json:"items"`
}

type AddCartItemRequest struct {
	GameID string `json:"gameId"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}
