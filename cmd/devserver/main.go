// Command devserver is a stub CareLink backend for local development and
// manual client testing. It implements just enough of the REST contract to
// exercise the client: token issuance, the batch sync endpoint with
// idempotent per-item acknowledgements, and static read collections.
//
// It holds no business logic and is not a reference for the production
// backend.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

func main() {
	addr := flag.String("a", "localhost:8080", "listen address host:port")
	flag.Parse()

	log := logger.NewLogger("devserver")
	s := newStubServer(log)

	log.Info().Str("addr", *addr).Msg("devserver listening")
	if err := http.ListenAndServe(*addr, s.routes()); err != nil {
		log.Fatal().Err(err).Msg("devserver stopped")
	}
}

type stubServer struct {
	logger *logger.Logger

	mu   sync.Mutex
	seen map[string]bool // operation IDs already applied, for idempotent replay
}

func newStubServer(log *logger.Logger) *stubServer {
	return &stubServer{logger: log, seen: make(map[string]bool)}
}

func (s *stubServer) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Post("/auth/login", s.login)
	router.Post("/auth/refresh", s.login)

	router.Post("/forms", s.acceptOperation)
	router.Post("/chat/messages", s.chatMessage)
	router.Post("/documents", s.uploadDocument)
	router.Post("/sync/batch", s.syncBatch)

	router.Get("/patients", s.patients)
	router.Get("/documents", s.documents)
	router.Get("/approvals", s.approvals)
	router.Put("/approvals/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return router
}

func (s *stubServer) login(w http.ResponseWriter, _ *http.Request) {
	claims := jwt.MapClaims{
		"sub":  "dev-user",
		"role": string(models.RoleAdmin),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("devserver-secret"))
	if err != nil {
		http.Error(w, "sign token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	w.WriteHeader(http.StatusOK)
}

// acceptOperation acknowledges a direct operation delivery, deduplicating
// by client-generated ID the way the real backend must.
func (s *stubServer) acceptOperation(w http.ResponseWriter, r *http.Request) {
	var op models.PendingOperation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		http.Error(w, "bad operation body", http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	duplicate := s.seen[op.ID]
	s.seen[op.ID] = true
	s.mu.Unlock()

	if duplicate {
		s.logger.Info().Str("operation_id", op.ID).Msg("duplicate delivery ignored")
	}
	w.WriteHeader(http.StatusOK)
}

func (s *stubServer) chatMessage(w http.ResponseWriter, r *http.Request) {
	var op models.PendingOperation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		http.Error(w, "bad operation body", http.StatusUnprocessableEntity)
		return
	}

	payload, err := models.DecodePayload(models.KindChatMessage, op.Payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	msg := payload.(models.ChatMessage)

	s.mu.Lock()
	s.seen[op.ID] = true
	s.mu.Unlock()

	writeJSON(w, models.ChatReply{
		ConversationID: msg.ConversationID,
		Text:           "devserver echo: " + msg.Text,
		CreatedAt:      time.Now().UTC(),
	})
}

func (s *stubServer) uploadDocument(w http.ResponseWriter, r *http.Request) {
	var op models.PendingOperation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		http.Error(w, "bad operation body", http.StatusUnprocessableEntity)
		return
	}

	payload, err := models.DecodePayload(models.KindDocumentUpload, op.Payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	doc := payload.(models.DocumentUpload)

	s.mu.Lock()
	s.seen[op.ID] = true
	s.mu.Unlock()

	writeJSON(w, models.DocumentRecord{
		ID:         "doc-" + op.ID,
		PatientID:  doc.PatientID,
		FileName:   doc.FileName,
		Status:     models.DocumentPending,
		UploadedAt: time.Now().UTC(),
	})
}

func (s *stubServer) syncBatch(w http.ResponseWriter, r *http.Request) {
	var req models.SyncBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad batch body", http.StatusUnprocessableEntity)
		return
	}

	var resp models.SyncBatchResponse
	s.mu.Lock()
	for _, group := range [][]models.PendingOperation{req.Forms, req.Chats, req.Documents} {
		for _, op := range group {
			// Replays of known IDs are acknowledged without reapplying.
			s.seen[op.ID] = true
			resp.Results = append(resp.Results, models.SyncItemResult{ID: op.ID, Accepted: true})
		}
	}
	s.mu.Unlock()

	writeJSON(w, resp)
}

func (s *stubServer) patients(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, []models.Patient{
		{ID: "p-1", Name: "Asha Devi", Risk: models.RiskHigh, AssignedWorker: "w-1", RegisteredAt: time.Now().Add(-72 * time.Hour)},
		{ID: "p-2", Name: "Meena Kumari", Risk: models.RiskLow, AssignedWorker: "w-1", RegisteredAt: time.Now().Add(-24 * time.Hour)},
	})
}

func (s *stubServer) documents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, []models.DocumentRecord{
		{ID: "doc-1", PatientID: "p-1", FileName: "scan.pdf", Status: models.DocumentAnalyzed, Summary: "normal", UploadedAt: time.Now().Add(-48 * time.Hour)},
	})
}

func (s *stubServer) approvals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, []models.ApprovalRequest{
		{ID: "appr-1", UserName: "New Worker", Requested: models.RoleASHA, Status: models.ApprovalPending, CreatedAt: time.Now().Add(-6 * time.Hour)},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
