// Command feedwatch connects to a terraind feed as an observer and prints
// every chunk signal it receives, decoding the mesh and collider payloads.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/go-theft-craft/voxel-terrain/internal/feed"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/meshcodec"
)

func main() {
	var (
		addr  = flag.String("addr", "localhost:8080", "terraind listen address")
		x     = flag.Float64("x", 0, "observer x")
		y     = flag.Float64("y", 16, "observer y")
		z     = flag.Float64("z", 0, "observer z")
		count = flag.Int("n", 0, "stop after n messages (0 runs until the feed closes)")
	)
	flag.Parse()

	codec, err := meshcodec.New()
	if err != nil {
		panic(err)
	}
	defer codec.Close()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/feed"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	hello, err := json.Marshal(feed.ClientMsg{
		Type: feed.TypeObserver,
		Pos:  [3]float32{float32(*x), float32(*y), float32(*z)},
	})
	if err != nil {
		panic(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		panic(err)
	}

	log.Default().Printf("watching %s from (%.1f, %.1f, %.1f)", u.String(), *x, *y, *z)

	for n := 0; *count == 0 || n < *count; n++ {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Default().Printf("feed closed: %v", err)
			return
		}
		var msg feed.ChunkMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			panic(err)
		}
		log.Default().Print(describe(codec, msg))
	}
}

func describe(codec *meshcodec.Codec, msg feed.ChunkMsg) string {
	head := fmt.Sprintf("%-14s %v render=%d collider=%d", msg.Type, msg.Pos, msg.Render, msg.Collider)
	if msg.Type == feed.TypeChunkReleased {
		return head
	}

	m, err := codec.Decode(msg.Mesh)
	if err != nil {
		return fmt.Sprintf("%s bad mesh: %v", head, err)
	}
	col, err := codec.DecodeCollision(msg.Collision)
	if err != nil {
		return fmt.Sprintf("%s bad collider: %v", head, err)
	}
	if m.Empty() {
		return fmt.Sprintf("%s empty %s collider=%d", head, col.Kind, col.Len())
	}
	return fmt.Sprintf("%s faces=%d vertices=%d %s collider=%d",
		head, m.FaceCount(), m.VertexCount(), col.Kind, col.Len())
}
