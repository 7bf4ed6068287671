package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ku28/formi/internal/catalog"
	"github.com/ku28/formi/internal/knowledge"
	"github.com/ku28/formi/internal/models"
	"github.com/ku28/formi/internal/notify"
	"github.com/ku28/formi/internal/store"
	"github.com/ku28/formi/internal/util"
)

// User-facing messages owned by the driver.
const (
	// ClarifyConfirmationMessage re-asks a pending yes/no question.
	ClarifyConfirmationMessage = "Sorry, I didn't catch that. Could you answer with a yes or no?"
	// BookingCompleteMessage closes a finished conversation.
	BookingCompleteMessage = "Your table is booked! We look forward to seeing you. Send a new message without a conversation ID to start another booking."
)

// Driver runs whole conversations: it owns session lookup and creation,
// per-conversation turn serialization, the confirmation sub-state, and the
// write-back of transition decisions. The executor below it only ever sees
// a single turn.
type Driver struct {
	catalog    *catalog.Catalog
	executor   *Executor
	sessions   store.SessionStore
	base       *knowledge.Base
	classifier ConfirmationClassifier
	notifier   notify.Sender

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// DriverOption configures optional driver collaborators.
type DriverOption func(*Driver)

// WithClassifier replaces the default keyword confirmation classifier.
func WithClassifier(c ConfirmationClassifier) DriverOption {
	return func(d *Driver) { d.classifier = c }
}

// WithNotifier replaces the default logging booking notifier.
func WithNotifier(n notify.Sender) DriverOption {
	return func(d *Driver) { d.notifier = n }
}

// NewDriver creates a conversation driver.
func NewDriver(cat *catalog.Catalog, exec *Executor, sessions store.SessionStore, base *knowledge.Base, opts ...DriverOption) *Driver {
	d := &Driver{
		catalog:    cat,
		executor:   exec,
		sessions:   sessions,
		base:       base,
		classifier: KeywordClassifier{},
		notifier:   notify.LogSender{},
		locks:      make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// lockFor returns the mutex serializing turns for one conversation ID.
// Turns for a single conversation must apply in arrival order; different
// conversations proceed fully concurrently.
func (d *Driver) lockFor(conversationID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[conversationID] = lock
	}
	return lock
}

// HandleMessage processes one inbound user message to completion and
// returns the engine's reply. A missing conversation ID starts a new
// session at the catalog's initial template.
func (d *Driver) HandleMessage(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return models.ChatResponse{}, err
	}

	conversationID := req.ConversationID
	isNew := conversationID == ""
	if isNew {
		conversationID = util.GenerateConversationID()
	}

	lock := d.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()

	session, err := d.sessions.GetSession(conversationID)
	if err != nil {
		slog.Error("Driver.HandleMessage: session lookup failed", "error", err, "conversationID", conversationID)
		return models.ChatResponse{}, fmt.Errorf("failed to load session %s: %w", conversationID, err)
	}
	if session == nil {
		if !isNew {
			slog.Warn("Driver.HandleMessage: unknown conversation ID, starting fresh session", "conversationID", conversationID)
		}
		session = models.NewSession(conversationID, d.catalog.InitialTemplate())
	}

	result, err := d.advance(ctx, session, req.Message, isNew)
	if err != nil {
		return models.ChatResponse{}, err
	}

	if req.Message != "" {
		session.AppendTurn(models.RoleUser, req.Message)
	}
	session.AppendTurn(models.RoleAssistant, result.Message)

	if err := d.sessions.SaveSession(*session); err != nil {
		slog.Error("Driver.HandleMessage: session save failed", "error", err, "conversationID", conversationID)
		return models.ChatResponse{}, fmt.Errorf("failed to save session %s: %w", conversationID, err)
	}

	response := models.ChatResponse{
		Reply:          result.Message,
		ConversationID: conversationID,
		CurrentState:   session.CurrentTemplate,
		RequiresInput:  result.RequiresInput,
	}
	d.attachHints(session, &response)
	return response, nil
}

// advance resolves the active template and runs one turn through the
// confirmation sub-state and the executor, applying any transition to the
// session.
func (d *Driver) advance(ctx context.Context, session *models.Session, message string, isNew bool) (models.StepResult, error) {
	if session.CurrentTemplate == catalog.TerminalState {
		return models.StepResult{Type: models.StepTransition, Message: BookingCompleteMessage, NextState: catalog.TerminalState}, nil
	}

	tmpl, err := d.catalog.Get(session.CurrentTemplate)
	if err != nil {
		// A session pointing at a template no longer in the catalog is a
		// hard error: silently defaulting would desynchronize the user's
		// view of progress.
		slog.Error("Driver.advance: session references unknown template",
			"conversationID", session.ConversationID, "template", session.CurrentTemplate)
		return models.StepResult{}, err
	}

	// The first message of a conversation only opens it; the collect prompt
	// is produced from the template's fallback.
	input := message
	if isNew {
		input = ""
	}

	var result models.StepResult
	if session.PendingConfirmation != "" && input != "" {
		result, err = d.resolveConfirmation(ctx, tmpl, session, input)
		if err != nil {
			return models.StepResult{}, err
		}
	} else {
		result = d.executor.Step(ctx, tmpl, session, input)
	}

	if result.Advances() {
		session.CurrentTemplate = result.NextState
		if result.NextState == catalog.TerminalState {
			d.completeBooking(ctx, session, &result)
		}
	}
	return result, nil
}

// resolveConfirmation interprets the reply to a pending yes/no question.
// Affirmation marks the entity confirmed and re-runs the step with the
// stored value so transition rules are evaluated; denial discards the value
// and restarts collection; anything else re-asks.
func (d *Driver) resolveConfirmation(ctx context.Context, tmpl models.PromptTemplate, session *models.Session, input string) (models.StepResult, error) {
	entityName := session.PendingConfirmation
	intent, err := d.classifier.ClassifyConfirmation(ctx, input)
	if err != nil {
		slog.Error("Driver.resolveConfirmation: classifier failed, treating reply as unclear",
			"error", err, "conversationID", session.ConversationID)
		intent = IntentUnclear
	}

	switch intent {
	case IntentAffirm:
		session.Confirmations[entityName] = true
		session.PendingConfirmation = ""
		slog.Debug("Driver.resolveConfirmation: entity confirmed",
			"conversationID", session.ConversationID, "entity", entityName)
		return d.executor.Step(ctx, tmpl, session, session.CollectedData[entityName]), nil
	case IntentDeny:
		delete(session.CollectedData, entityName)
		delete(session.Confirmations, entityName)
		session.PendingConfirmation = ""
		slog.Debug("Driver.resolveConfirmation: entity rejected, restarting collection",
			"conversationID", session.ConversationID, "entity", entityName)
		return models.StepResult{Type: models.StepCollect, Message: tmpl.FallbackPrompt, RequiresInput: true}, nil
	default:
		return models.StepResult{Type: models.StepConfirm, Message: ClarifyConfirmationMessage, RequiresInput: true}, nil
	}
}

// completeBooking sends the booking confirmation and closes out the reply.
func (d *Driver) completeBooking(ctx context.Context, session *models.Session, result *models.StepResult) {
	summary := bookingSummary(session)
	if err := d.notifier.SendBookingConfirmation(ctx, session.ConversationID, summary); err != nil {
		// Notification failure must not fail the user's turn.
		slog.Error("Driver.completeBooking: notification failed", "error", err, "conversationID", session.ConversationID)
	}
	result.Message = strings.TrimSpace(result.Message + " " + BookingCompleteMessage)
	result.RequiresInput = false
}

// bookingSummary renders the collected booking facts as one line.
func bookingSummary(session *models.Session) string {
	parts := make([]string, 0, 3)
	if city := session.CollectedData["city"]; city != "" {
		parts = append(parts, "city: "+city)
	}
	if location := session.CollectedData["location"]; location != "" {
		parts = append(parts, "outlet: "+location)
	}
	if slot := session.CollectedData["time_slot"]; slot != "" {
		parts = append(parts, "slot: "+slot)
	}
	return "Booking confirmed (" + strings.Join(parts, ", ") + ")"
}

// attachHints derives the per-turn UI hints from the active template and
// collected data. Hints are recomputed every turn, never stored.
func (d *Driver) attachHints(session *models.Session, response *models.ChatResponse) {
	switch session.CurrentTemplate {
	case catalog.TemplateCityCollection:
		response.RequiresCity = true
		response.AvailableCities = d.base.Cities()
	case catalog.TemplateLocationCollection:
		response.RequiresLocation = true
		if city := session.CollectedData["city"]; city != "" {
			response.AvailableLocations = map[string][]string{
				city: d.base.LocationsForCity(city),
			}
		}
	}
}
