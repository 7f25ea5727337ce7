// Package events defines the notifications exchanged between the server
// supervisor, the authorization flow and whatever presents them.
//
// StartupEvent is a closed union of Ready and Failure, fanned out to
// subscribers through a Bus. EventReason and MessageTemplateEngine turn
// events into user-visible text; templates are text/template with the sprig
// function map.
package events
