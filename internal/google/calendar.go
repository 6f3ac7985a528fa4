package google

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/fathimasithara01/caseflow/internal/apperr"
)

// Service handles the OAuth code exchange and calendar event creation. When
// client credentials are absent the service still constructs, but every
// request fails with a 503; boot is not blocked (the rest of the API works
// without Google).
type Service struct {
	oauth  *oauth2.Config
	tokens *mongo.Collection
	log    *zap.SugaredLogger
}

func NewService(clientID, clientSecret, redirectURL string, tokens *mongo.Collection, log *zap.SugaredLogger) *Service {
	s := &Service{tokens: tokens, log: log}
	if clientID == "" || clientSecret == "" {
		log.Warn("google client credentials missing, calendar integration disabled")
		return s
	}
	s.oauth = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     googleoauth.Endpoint,
	}
	return s
}

type storedToken struct {
	UserID    string    `bson:"_id"`
	Token     []byte    `bson:"token"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// CreateToken exchanges an authorization code for a token and stores it for
// the current user.
func (s *Service) CreateToken(c *fiber.Ctx) error {
	if s.oauth == nil {
		return apperr.Unavailable("google integration is not configured")
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&body); err != nil || body.Code == "" {
		return apperr.Validation("authorization code is required")
	}
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return apperr.Unauthorized("unauthenticated")
	}

	tok, err := s.oauth.Exchange(c.Context(), body.Code)
	if err != nil {
		return apperr.Wrap(apperr.KindProvider, "google token exchange failed", err)
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	_, err = s.tokens.UpdateOne(c.Context(),
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"token": raw, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "google account connected"})
}

type eventInput struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// CreateEvents inserts an event into the user's primary calendar.
func (s *Service) CreateEvents(c *fiber.Ctx) error {
	if s.oauth == nil {
		return apperr.Unavailable("google integration is not configured")
	}
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return apperr.Unauthorized("unauthenticated")
	}
	var in eventInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid event body")
	}
	if in.Summary == "" || in.Start.IsZero() || in.End.IsZero() {
		return apperr.Validation("summary, start and end are required")
	}

	tok, err := s.tokenFor(c.Context(), userID)
	if err != nil {
		return err
	}
	svc, err := calendar.NewService(c.Context(),
		option.WithTokenSource(s.oauth.TokenSource(c.Context(), tok)))
	if err != nil {
		return apperr.Wrap(apperr.KindProvider, "google calendar client failed", err)
	}

	ev := &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
		Start:       &calendar.EventDateTime{DateTime: in.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: in.End.Format(time.RFC3339)},
	}
	created, err := svc.Events.Insert("primary", ev).Do()
	if err != nil {
		return apperr.Wrap(apperr.KindProvider, "google event creation failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "event created",
		"data":    fiber.Map{"id": created.Id, "htmlLink": created.HtmlLink},
	})
}

func (s *Service) tokenFor(ctx context.Context, userID string) (*oauth2.Token, error) {
	var st storedToken
	err := s.tokens.FindOne(ctx, bson.M{"_id": userID}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Validation("google account is not connected")
	}
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(st.Token, &tok); err != nil {
		return nil, apperr.Validation("stored google token is unreadable, reconnect the account")
	}
	return &tok, nil
}
