// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package fanout

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/mediagateway/gateway/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

// DeviceConn is the device-facing edge of the Fan-Out Bus: it drives a
// gorilla/websocket connection off a Hub subscription channel, writing each
// Envelope as a JSON frame and answering pings with pongs. HTTP upgrade
// handling is the caller's responsibility; DeviceConn only owns the
// connection once it exists.
type DeviceConn struct {
	conn   *websocket.Conn
	userID string
	id     string
}

// NewDeviceConn wraps an already-upgraded websocket connection for userID/deviceID.
func NewDeviceConn(conn *websocket.Conn, userID, deviceID string) *DeviceConn {
	return &DeviceConn{conn: conn, userID: userID, id: deviceID}
}

// WritePump relays envelopes from the Hub subscription channel to the
// connection until it closes or a write fails, sending periodic pings in
// between to detect a dead peer.
func (c *DeviceConn) WritePump(envelopes <-chan Envelope) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-envelopes:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Str("device_id", c.id).Msg("fanout: failed to set write deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				logging.Error().Err(err).Str("device_id", c.id).Msg("fanout: failed to write envelope")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump discards inbound frames except pongs, which reset the read
// deadline; the device-facing edge is receive-only from the bus's
// perspective, but the pong handshake keeps the connection's liveness
// detectable.
func (c *DeviceConn) ReadPump(onClose func()) {
	defer onClose()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Str("device_id", c.id).Msg("fanout: failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Str("device_id", c.id).Msg("fanout: unexpected websocket close")
			}
			return
		}
	}
}
