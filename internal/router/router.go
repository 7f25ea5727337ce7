// Package router dispatches inbound events from the web view: custom-scheme
// callback URLs and script messages posted by the page.
package router

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/events"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/geojson"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// Routing tags and message names.
const (
	TagOAuth2          = "oauth2"
	TagOEmbed          = "oembed"
	MessagePublishData = "publishData"
)

// Route identifies where an event is dispatched.
type Route int

const (
	RouteUnknown Route = iota
	RouteOAuth2
	RouteOEmbed
	RoutePublishData
)

func (r Route) String() string {
	switch r {
	case RouteOAuth2:
		return "oauth2"
	case RouteOEmbed:
		return "oembed"
	case RoutePublishData:
		return "publishData"
	default:
		return "unknown"
	}
}

// Event is either a CallbackURL or a ScriptMessage.
type Event interface {
	event()
}

// CallbackURL is a URL opened through the application's custom scheme, for
// example geotag://oembed?url=....
type CallbackURL struct {
	Raw string
}

// ScriptMessage is a message posted by the page to a named handler.
type ScriptMessage struct {
	Name string
	Body string
}

func (CallbackURL) event()   {}
func (ScriptMessage) event() {}

// CallbackHandler consumes oauth2 callbacks.
type CallbackHandler interface {
	HandleCallback(u *url.URL)
}

// Presenter is the part of the presentation layer the router talks to.
type Presenter interface {
	ShowOEmbed(url string)
	ShowError(title, message string)
}

// Publisher receives validated publishData payloads.
type Publisher interface {
	Publish(p *geojson.Payload) error
}

// DataError reports a publishData payload that could not be used. It only
// affects the one publish attempt.
type DataError struct {
	Err error
}

func (e *DataError) Error() string {
	return e.Err.Error()
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// Router dispatches events to its collaborators.
type Router struct {
	callbacks CallbackHandler
	presenter Presenter
	publisher Publisher
	messages  *events.MessageTemplateEngine
}

// New creates a Router. A nil publisher logs payloads and discards them.
func New(callbacks CallbackHandler, presenter Presenter, publisher Publisher) *Router {
	if publisher == nil {
		publisher = LogPublisher{}
	}
	return &Router{
		callbacks: callbacks,
		presenter: presenter,
		publisher: publisher,
		messages:  events.NewMessageTemplateEngine(),
	}
}

// Classify returns the route for ev without dispatching it.
func Classify(ev Event) Route {
	switch e := ev.(type) {
	case CallbackURL:
		u, err := url.Parse(e.Raw)
		if err != nil {
			return RouteUnknown
		}
		switch callbackTag(u) {
		case TagOAuth2:
			return RouteOAuth2
		case TagOEmbed:
			return RouteOEmbed
		}
	case ScriptMessage:
		if e.Name == MessagePublishData {
			return RoutePublishData
		}
	}
	return RouteUnknown
}

// callbackTag returns the routing tag: the host of geotag://tag?... or the
// opaque part of geotag:tag?....
func callbackTag(u *url.URL) string {
	if u.Host != "" {
		return strings.ToLower(u.Host)
	}
	return strings.ToLower(strings.TrimPrefix(u.Opaque, "//"))
}

// Dispatch routes ev. The only errors returned are for publishData payloads
// that were rejected or could not be published; those are also shown to the
// user. Unknown events are logged and dropped.
func (r *Router) Dispatch(ev Event) (Route, error) {
	route := Classify(ev)

	switch route {
	case RouteOAuth2:
		u, _ := url.Parse(ev.(CallbackURL).Raw)
		if r.callbacks == nil {
			logging.Warn("Router", "No handler for oauth2 callback")
			return route, nil
		}
		r.callbacks.HandleCallback(u)

	case RouteOEmbed:
		u, _ := url.Parse(ev.(CallbackURL).Raw)
		target := u.Query().Get("url")
		if target == "" {
			logging.Debug("Router", "oembed callback without url parameter")
			return route, nil
		}
		logging.Info("Router", "%s", r.messages.Render(events.ReasonOEmbedRequested, events.EventData{Endpoint: target}))
		if r.presenter != nil {
			r.presenter.ShowOEmbed(target)
		}

	case RoutePublishData:
		return route, r.publish(ev.(ScriptMessage).Body)

	default:
		logging.Info("Router", "Unhandled event %s", describe(ev))
	}
	return route, nil
}

func (r *Router) publish(body string) error {
	payload, err := geojson.Decode(body)
	if err != nil {
		derr := &DataError{Err: err}
		r.reject(derr)
		return derr
	}

	if err := r.publisher.Publish(payload); err != nil {
		err = fmt.Errorf("failed to publish %d features: %w", payload.Count(), err)
		r.reject(err)
		return err
	}

	logging.Info("Router", "%s", r.messages.Render(events.ReasonDataPublished, events.EventData{Features: payload.Count()}))
	return nil
}

func (r *Router) reject(err error) {
	logging.Warn("Router", "%s", r.messages.Render(events.ReasonDataRejected, events.EventData{Error: err.Error()}))
	if r.presenter != nil {
		r.presenter.ShowError(events.AlertTitle, err.Error())
	}
}

func describe(ev Event) string {
	switch e := ev.(type) {
	case CallbackURL:
		return fmt.Sprintf("callback %q", e.Raw)
	case ScriptMessage:
		return fmt.Sprintf("message %q", e.Name)
	default:
		return fmt.Sprintf("%T", ev)
	}
}

// LogPublisher logs each payload's feature count and extent.
type LogPublisher struct{}

// Publish implements Publisher.
func (LogPublisher) Publish(p *geojson.Payload) error {
	b := p.Bound()
	logging.Info("Router", "Received %s with %d features within [%f,%f %f,%f]",
		p.Type, p.Count(), b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat())
	return nil
}
