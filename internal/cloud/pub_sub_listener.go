// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with the remote media
// analysis platform and Google Cloud services. This file defines a generic,
// reusable Pub/Sub message listener. The listener abstracts the mechanics of
// receiving messages from a subscription and delegates the actual processing
// to a "Command", keeping transport and business logic separate.
//
// Logic Flow:
//  1. A PubSubListener is created with a client and a subscription ID.
//  2. A Command (a piece of business logic) is attached to the listener.
//  3. `Listen` starts an asynchronous background goroutine.
//  4. The goroutine waits for messages from the subscription.
//  5. Each arriving message is passed to the attached Command.
//  6. The message is acknowledged only if the Command completes without
//     errors, giving at-least-once processing semantics.
//  7. The whole path is instrumented with OpenTelemetry spans.
//
// Structs:
//   - PubSubListener: Binds a subscription to a processing command.
//
// Functions:
//   - NewPubSubListener: Constructor for a new listener.
//   - SetCommand: Attaches a processing command to the listener.
//   - Listen: Starts the background receive loop.
package cloud

import (
	"context"
	"log"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener encapsulates the components needed to listen to a specific
// Pub/Sub subscription. Listeners have a life-cycle independent of
// individual API requests, so they live with the other cloud components.
type PubSubListener struct {
	client       *pubsub.Client       // The client for interacting with the Pub/Sub service.
	subscription *pubsub.Subscription // The subscription this listener pulls messages from.
	command      cor.Command          // The command executed for each received message.
}

// NewPubSubListener initializes a listener with a Pub/Sub client, the ID of
// the subscription to listen to, and the command that will process messages.
//
// Inputs:
//   - pubsubClient: An authenticated *pubsub.Client.
//   - subscriptionID: The string ID of the subscription.
//   - command: The cor.Command to execute per message; may be nil and
//     attached later via SetCommand.
//
// Outputs:
//   - *PubSubListener: A pointer to the configured listener.
//   - error: Reserved for future construction failures; currently always nil.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	sub := pubsubClient.Subscription(subscriptionID)

	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: sub,
		command:      command,
	}
	return cmd, nil
}

// SetCommand attaches a command to the listener. Listeners are often created
// before the full processing chain exists; the first attached command wins
// and later calls are ignored.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts the asynchronous message receiving process in a background
// goroutine so the server can keep handling API requests.
//
// Inputs:
//   - ctx: Controls the lifecycle of the listener; canceling it stops the
//     receive loop during graceful shutdown.
func (m *PubSubListener) Listen(ctx context.Context) {
	log.Printf("listening: %s", m.subscription)

	go func() {
		tracer := otel.Tracer("message-listener")

		// Receive blocks and invokes the callback for each message.
		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, "receive-message")
			span.SetAttributes(attribute.String("msg", string(msg.Data)))

			// Seed a fresh chain context with the raw message payload and the
			// span's context so downstream commands participate in the trace.
			chainCtx := cor.NewBaseContext()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			if !chainCtx.HasErrors() {
				span.SetStatus(codes.Ok, "success")
				msg.Ack()
			} else {
				span.SetStatus(codes.Error, "failed")
				for _, e := range chainCtx.GetErrors() {
					log.Printf("error executing chain: %v", e)
				}
				// No Ack and no Nack: the message redelivers after its
				// acknowledgement deadline per the subscription's policy.
			}

			span.End()
		})

		if err != nil {
			log.Printf("error receiving data: %v", err)
		}
	}()
}
