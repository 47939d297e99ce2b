/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Comcast/dtable/core"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTBridge evaluates messages that arrive on PREFIX/eval/TABLE and
// publishes each Result to PREFIX/result/TABLE.
type MQTTBridge struct {
	Client  mqtt.Client
	Prefix  string
	QoS     byte
	Quiesce uint

	service *Service
}

func NewMQTTBridge(ctx context.Context, conf *MQTTConfig, s *Service) *MQTTBridge {
	mqtt.ERROR = log.New(os.Stderr, "mqtt.error ", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(conf.Broker)
	opts.SetClientID(conf.ClientId)
	opts.SetKeepAlive(time.Second * time.Duration(conf.KeepAlive))
	opts.Username = conf.Username
	opts.Password = conf.Password
	opts.AutoReconnect = conf.Reconnect
	opts.CleanSession = true

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	}

	b := &MQTTBridge{
		Prefix:  strings.TrimSuffix(conf.Prefix, "/"),
		QoS:     conf.QoS,
		Quiesce: conf.Quiesce,
		service: s,
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		topic, js, err := b.handle(ctx, msg.Topic(), msg.Payload())
		if err != nil {
			log.Printf("MQTT ignoring %s: %v", msg.Topic(), err)
			return
		}
		token := client.Publish(topic, b.QoS, false, js)
		if token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error: %s", token.Error())
		}
	}

	b.Client = mqtt.NewClient(opts)

	return b
}

// EvalTopic is the subscription topic.
func (b *MQTTBridge) EvalTopic() string {
	return b.Prefix + "/eval/+"
}

// handle evaluates a payload that arrived on the topic and returns
// the topic and payload for the reply.
func (b *MQTTBridge) handle(ctx context.Context, topic string, payload []byte) (string, []byte, error) {
	name := topic[strings.LastIndex(topic, "/")+1:]
	if name == "" || !strings.HasPrefix(topic, b.Prefix+"/eval/") {
		return "", nil, fmt.Errorf("unexpected topic %s", topic)
	}

	var msg core.Bindings
	if err := json.Unmarshal(payload, &msg); err != nil {
		return "", nil, err
	}

	r, err := b.service.Eval(ctx, name, msg)
	if err != nil {
		r = &Result{
			Table: name,
			Error: err.Error(),
			At:    timestamp(),
		}
	}

	js, err := json.Marshal(r)
	if err != nil {
		return "", nil, err
	}
	return b.Prefix + "/result/" + name, js, nil
}

// Start connects and subscribes.
func (b *MQTTBridge) Start(ctx context.Context) error {
	log.Printf("Attempting to connect to broker")
	if token := b.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("Connected to broker")

	topic := b.EvalTopic()
	log.Printf("Subscribing to %s (%d)", topic, b.QoS)
	if t := b.Client.Subscribe(topic, b.QoS, nil); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	go func() {
		<-ctx.Done()
		b.Stop()
	}()

	return nil
}

// Stop terminates the MQTT session.
func (b *MQTTBridge) Stop() {
	log.Printf("Disconnecting")
	b.Client.Disconnect(b.Quiesce)
}
