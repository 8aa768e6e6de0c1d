package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/katatrina/blood-notify/internal/util"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Platform is the push service the bridge talks to.
type Platform interface {
	Supported() bool
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Token(ctx context.Context) (string, error)
	// Subscribe delivers foreground messages for userID to fn until the
	// returned func is called.
	Subscribe(userID string, fn func(Message)) (unsubscribe func(), err error)
}

const notificationsCollection = "notifications"

// FirebasePlatform relays documents added to the Firestore notifications
// collection as foreground messages. Without credentials it reports itself
// unsupported.
type FirebasePlatform struct {
	client     *firestore.Client
	deviceInfo string

	mu         sync.Mutex
	permission Permission
	token      string
}

func NewFirebasePlatform(ctx context.Context, credentialsFile, projectID, deviceInfo string) (*FirebasePlatform, error) {
	p := &FirebasePlatform{
		deviceInfo: deviceInfo,
		permission: PermissionDefault,
	}
	if credentialsFile == "" {
		log.Warn().Msg("firebase credentials not configured, push notifications are unsupported")
		return p, nil
	}

	var config *firebase.Config
	if projectID != "" {
		config = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, config, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	p.client = client
	return p, nil
}

func (p *FirebasePlatform) Supported() bool {
	return p.client != nil
}

func (p *FirebasePlatform) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

// RequestPermission grants immediately on a supported platform; a headless
// client has nobody to prompt.
func (p *FirebasePlatform) RequestPermission(_ context.Context) (Permission, error) {
	if !p.Supported() {
		return PermissionDenied, ErrUnsupported
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permission = PermissionGranted
	return p.permission, nil
}

// Token returns the device token, generating it on first use.
func (p *FirebasePlatform) Token(_ context.Context) (string, error) {
	if !p.Supported() {
		return "", ErrUnsupported
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.permission != PermissionGranted {
		return "", ErrPermissionDenied
	}
	if p.token == "" {
		p.token = util.GenerateDeviceToken(p.deviceInfo)
	}
	return p.token, nil
}

func (p *FirebasePlatform) Subscribe(userID string, fn func(Message)) (func(), error) {
	if !p.Supported() {
		return nil, ErrUnsupported
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.listen(ctx, userID, fn)
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (p *FirebasePlatform) listen(ctx context.Context, userID string, fn func(Message)) {
	snapshots := p.client.Collection(notificationsCollection).
		Where("recipientID", "==", userID).
		Snapshots(ctx)
	defer snapshots.Stop()

	// The first snapshot holds what already exists; only later additions
	// are foreground pushes.
	initial := true
	for {
		snap, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, iterator.Done) {
				return
			}
			log.Error().Err(err).Str("user_id", userID).Msg("firestore notification listener stopped")
			return
		}
		if initial {
			initial = false
			continue
		}

		for _, change := range snap.Changes {
			if change.Kind != firestore.DocumentAdded {
				continue
			}
			fn(messageFromDocument(change.Doc.Ref.ID, change.Doc.Data()))
		}
	}
}

// Close releases the Firestore client.
func (p *FirebasePlatform) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// messageFromDocument maps a notifications document to a Message.
func messageFromDocument(id string, doc map[string]any) Message {
	m := Message{
		Data: map[string]string{"id": id},
	}
	if v, ok := doc["title"].(string); ok {
		m.Title = v
	}
	if v, ok := doc["message"].(string); ok {
		m.Body = v
	}
	if v, ok := doc["icon"].(string); ok {
		m.Icon = v
	}
	for _, key := range []string{"type", "referenceID", "url"} {
		if v, ok := doc[key].(string); ok && v != "" {
			m.Data[key] = v
		}
	}

	raw, err := json.Marshal(doc)
	if err == nil {
		m.Raw = raw
	}
	return m
}
