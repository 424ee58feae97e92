// Command payment-gateway is a standalone stand-in for the real payment
// gateway, for local development without gateway credentials. It accepts
// payment intent creation and can deliver signed webhooks back to the server.
//
// Usage:
//
//	PORT=9090 WEBHOOK_URL=http://localhost:8080/payments/webhook \
//	WEBHOOK_SECRET=whsec_dev go run .
//
// Confirm or fail an intent by hand:
//
//	curl -X POST localhost:9090/intents/pi_000001/succeed
//	curl -X POST localhost:9090/intents/pi_000001/fail
package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

type server struct {
	webhookURL    string
	webhookSecret string

	mu      sync.Mutex
	nextSeq int
	intents map[string]map[string]string
}

func main() {
	s := &server{
		webhookURL:    envOr("WEBHOOK_URL", "http://localhost:8080/payments/webhook"),
		webhookSecret: envOr("WEBHOOK_SECRET", "whsec_dev"),
		intents:       make(map[string]map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/payment_intents", s.handleCreateIntent)
	mux.HandleFunc("POST /intents/{id}/succeed", s.deliver("payment_intent.succeeded"))
	mux.HandleFunc("POST /intents/{id}/fail", s.deliver("payment_intent.payment_failed"))

	addr := ":" + envOr("PORT", "9090")
	log.Printf("mock payment gateway listening on %s, webhooks to %s", addr, s.webhookURL)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func (s *server) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"error":{"message":"malformed form body"}}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.nextSeq++
	id := fmt.Sprintf("pi_%06d", s.nextSeq)
	metadata := make(map[string]string)
	for key, values := range r.PostForm {
		if name, ok := strings.CutPrefix(key, "metadata["); ok {
			metadata[strings.TrimSuffix(name, "]")] = values[0]
		}
	}
	s.intents[id] = metadata
	s.mu.Unlock()

	log.Printf("created %s amount=%s currency=%s", id,
		r.PostFormValue("amount"), r.PostFormValue("currency"))

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":%q,"client_secret":"cs_mock_%s","status":"requires_payment_method"}`, id, id)
}

func (s *server) deliver(eventType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		s.mu.Lock()
		_, known := s.intents[id]
		s.mu.Unlock()
		if !known {
			http.Error(w, "unknown intent", http.StatusNotFound)
			return
		}

		payload, _ := json.Marshal(map[string]any{
			"type": eventType,
			"data": map[string]any{"object": map[string]any{"id": id}},
		})

		req, err := http.NewRequest(http.MethodPost, s.webhookURL, bytes.NewReader(payload))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Stripe-Signature", sign(payload, s.webhookSecret, time.Now()))

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()

		log.Printf("delivered %s for %s, server said %d", eventType, id, resp.StatusCode)
		w.WriteHeader(resp.StatusCode)
	}
}

func sign(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
