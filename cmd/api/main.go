package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/DivyaNareshkumarPatel/e-shop/internal/config"
	"github.com/DivyaNareshkumarPatel/e-shop/internal/database"
	"github.com/DivyaNareshkumarPatel/e-shop/internal/models"
	"github.com/DivyaNareshkumarPatel/e-shop/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		// Fail fast: there is no degraded mode without the store.
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	log.Info().Msg("connected to database")

	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/register", handleRegister(db, cfg.Auth.BcryptCost))
	mux.HandleFunc("/api/auth/login", handleLogin(db))
	mux.HandleFunc("/api/products", handleProducts(db))
	mux.HandleFunc("/api/cart", handleCart(db))
	mux.HandleFunc("/api/cart/", handleCartItem(db))
	mux.HandleFunc("/api/status", handleStatus(db))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      cors.AllowAll().Handler(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Info().Str("port", cfg.Server.Port).Msg("server starting")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func handleRegister(db *sql.DB, bcryptCost int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" || req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "All fields are required.")
			return
		}

		user, err := store.RegisterUser(r.Context(), db, bcryptCost, req.Name, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, database.ErrEmailTaken) {
				respondError(w, http.StatusConflict, "An account with this email already exists.")
				return
			}
			log.Error().Err(err).Msg("register user")
			respondError(w, http.StatusInternalServerError, "Server error during registration.")
			return
		}

		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Registration successful. Please log in.",
			"userId":  user.ID,
		})
	}
}

func handleLogin(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "Email and password are required.")
			return
		}

		user, err := store.AuthenticateUser(r.Context(), db, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, database.ErrInvalidCredentials) {
				respondError(w, http.StatusUnauthorized, "Invalid credentials.")
				return
			}
			log.Error().Err(err).Msg("login user")
			respondError(w, http.StatusInternalServerError, "Server error during login.")
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Login successful.",
			"user":    user,
		})
	}
}

func handleProducts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		switch r.Method {
		case http.MethodPost:
			var req struct {
				ID          int64    `json:"id"`
				Name        string   `json:"name"`
				Price       *float64 `json:"price"`
				Category    string   `json:"category"`
				ImageURL    string   `json:"imageUrl"`
				Description string   `json:"description"`
				Details     []string `json:"details"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			if req.ID == 0 || req.Name == "" || req.Price == nil || req.Category == "" ||
				req.ImageURL == "" || req.Description == "" || len(req.Details) == 0 {
				respondError(w, http.StatusBadRequest, "All fields are required.")
				return
			}
			if *req.Price < 0 {
				respondError(w, http.StatusBadRequest, "Price must not be negative.")
				return
			}

			price := decimal.NewFromFloat(*req.Price)
			product, err := store.CreateProduct(ctx, db, req.ID, req.Name, price, req.Category, req.ImageURL, req.Description, req.Details)
			if err != nil {
				if errors.Is(err, database.ErrProductExists) {
					respondError(w, http.StatusConflict, "Product ID "+strconv.FormatInt(req.ID, 10)+" already exists.")
					return
				}
				log.Error().Err(err).Msg("create product")
				respondError(w, http.StatusInternalServerError, "Server error while adding product.")
				return
			}

			respondJSON(w, http.StatusCreated, map[string]interface{}{
				"message": "Product added successfully.",
				"product": product,
			})

		case http.MethodGet:
			products, err := store.ListProducts(ctx, db)
			if err != nil {
				log.Error().Err(err).Msg("list products")
				respondError(w, http.StatusInternalServerError, "Database error fetching products.")
				return
			}
			if products == nil {
				products = []models.Product{}
			}

			respondJSON(w, http.StatusOK, products)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleCart(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		switch r.Method {
		case http.MethodGet:
			userID, ok := callerID(r)
			if !ok {
				respondError(w, http.StatusUnauthorized, "User ID is required to view cart.")
				return
			}

			view, err := store.GetCartView(ctx, db, userID)
			if err != nil {
				log.Error().Err(err).Msg("get cart")
				respondError(w, http.StatusInternalServerError, "Database error fetching cart.")
				return
			}

			respondJSON(w, http.StatusOK, view)

		case http.MethodPost:
			var req struct {
				UserID    *int64 `json:"userId"`
				ProductID int64  `json:"productId"`
				Qty       *int   `json:"qty"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "User ID and valid Quantity are required.")
				return
			}
			if req.UserID == nil || req.Qty == nil || *req.Qty < 0 {
				respondError(w, http.StatusBadRequest, "User ID and valid Quantity are required.")
				return
			}

			view, err := store.UpsertCartLine(ctx, db, *req.UserID, req.ProductID, *req.Qty)
			if err != nil {
				if errors.Is(err, database.ErrProductNotFound) {
					respondError(w, http.StatusNotFound, "Product not found.")
					return
				}
				log.Error().Err(err).Msg("upsert cart line")
				respondError(w, http.StatusInternalServerError, "Database error updating cart.")
				return
			}

			respondJSON(w, http.StatusOK, view)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleCartItem covers the /api/cart/ subtree: checkout and line removal.
func handleCartItem(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/cart/checkout" {
			handleCheckout(db, w, r)
			return
		}

		if r.Method != http.MethodDelete {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		idStr := r.URL.Path[len("/api/cart/"):]
		productID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		userID, ok := callerID(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "User ID is required to modify cart.")
			return
		}

		view, err := store.RemoveCartLine(r.Context(), db, userID, productID)
		if err != nil {
			if errors.Is(err, database.ErrCartLineNotFound) {
				respondError(w, http.StatusNotFound, "Item not found in cart.")
				return
			}
			log.Error().Err(err).Msg("remove cart line")
			respondError(w, http.StatusInternalServerError, "Database error deleting item.")
			return
		}

		respondJSON(w, http.StatusOK, view)
	}
}

func handleCheckout(db *sql.DB, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		UserID *int64 `json:"userId"`
		Name   string `json:"name"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == nil || req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "User ID, name, and email are required for checkout.")
		return
	}

	receipt, err := store.Checkout(r.Context(), db, *req.UserID, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrEmptyCart) {
			respondError(w, http.StatusBadRequest, "Cannot checkout with an empty cart.")
			return
		}
		log.Error().Err(err).Msg("checkout")
		respondError(w, http.StatusInternalServerError, "Checkout failed due to server or database error.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Checkout successful!",
		"receipt": receipt,
	})
}

func handleStatus(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			respondError(w, http.StatusInternalServerError, "Server is up, but the database connection is failing.")
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{
			"status":    "Server and database connected.",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// callerID reads the caller-supplied identity from the query string. The
// value is trusted at face value; see the README for why that is unsafe.
func callerID(r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		return 0, false
	}
	return userID, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("encode json response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
