// The same chat server as cmd/chat-server, accepting raw TCP connections
// and upgrading them to WebSockets with gobwas/ws, skipping net/http
// entirely. The Conn adapter lives right here, as this is the only user
// of this transport.
package main

import (
    "flag"
    "github.com/gobwas/ws"
    "github.com/gobwas/ws/wsutil"
    "log"
    "net"
    "os"
    "os/signal"
    gochat "roomchat"
    "sync"
    "sync/atomic"
    "time"
)

// rawWsConn wrap an upgraded net.Conn into a gochat.Conn.
type rawWsConn struct {
    // The underlying, already upgraded, connection.
    conn net.Conn

    // idleTimeout after which a silent connection is closed.
    idleTimeout time.Duration

    // sendMutex synchronizes write operations on `conn`.
    sendMutex sync.Mutex

    // Whether the connection is currently active.
    active uint32
}

// Close the connection.
//
// This can safely be called multiple times without any issue.
func (c *rawWsConn) Close() error {
    if atomic.CompareAndSwapUint32(&c.active, 1, 0) {
        c.conn.Close()
    }

    return nil
}

// Recv blocks until a new text frame was received, answering control
// frames along the way.
func (c *rawWsConn) Recv() (string, error) {
    var buf [1]wsutil.Message

    for atomic.LoadUint32(&c.active) == 1 {
        if c.idleTimeout > 0 {
            c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
        }

        msgs, err := wsutil.ReadClientMessage(c.conn, buf[:0])
        if err != nil {
            c.Close()
            return "", gochat.ConnEOF
        }

        for i := range msgs {
            data := &(msgs[i])
            switch data.OpCode {
            case ws.OpClose:
                c.Close()
                return "", gochat.ConnEOF
            case ws.OpPing:
                err = c.send(ws.OpPong, data.Payload)
                if err != nil {
                    c.Close()
                    return "", gochat.ConnEOF
                }
            case ws.OpText:
                return string(data.Payload), nil
            default:
                // Ignore pongs and anything unexpected.
                continue
            }
        }
    }

    return "", gochat.ConnEOF
}

// send a frame, properly synchronizing the connection.
func (c *rawWsConn) send(op ws.OpCode, data []byte) error {
    c.sendMutex.Lock()
    defer c.sendMutex.Unlock()

    if atomic.LoadUint32(&c.active) != 1 {
        return gochat.ConnEOF
    }
    return wsutil.WriteServerMessage(c.conn, op, data)
}

// SendStr send `msg` as a single text frame.
func (c *rawWsConn) SendStr(msg string) error {
    err := c.send(ws.OpText, []byte(msg))
    if err != nil {
        return gochat.ConnEOF
    }
    return nil
}

type runningServer struct {
    // The raw listener accepting new connections.
    listener net.Listener

    // The chat server.
    chat gochat.ChatServer

    // idleTimeout handed to every new connection.
    idleTimeout time.Duration
}

// accept and upgrade connections until the listener gets closed.
func (s *runningServer) accept() {
    upgrader := ws.Upgrader{}

    for {
        conn, err := s.listener.Accept()
        if err != nil {
            log.Printf("Listener stopped: %+v", err)
            return
        }

        // Try to upgrade the connection to a websocket connection.
        _, err = upgrader.Upgrade(conn)
        if err != nil {
            log.Printf("Not a websocket! %+v", err)
            conn.Close()
            continue
        }

        go s.chat.Handle(&rawWsConn {
            conn: conn,
            idleTimeout: s.idleTimeout,
            active: 1,
        })
    }
}

// Halts the server, if still running.
func (s *runningServer) Close() {
    if s.listener != nil {
        s.listener.Close()
        s.listener = nil
    }
    if s.chat != nil {
        s.chat.Close()
        s.chat = nil
    }
}

func main() {
    log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)

    addr := flag.String("addr", "0.0.0.0:8890", "address on which the server accepts connections")
    usersFile := flag.String("users", "data/users.txt", "path of the credential file")
    idleTimeout := flag.Duration("idle-timeout", time.Minute, "how long a connection may stay silent")
    flag.Parse()

    logger := log.New(os.Stdout, "", log.LstdFlags)

    users, err := gochat.NewFileUserStore(*usersFile, logger)
    if err != nil {
        log.Fatalf("Couldn't load the user file '%s': %+v", *usersFile, err)
    }

    conf := gochat.GetDefaultServerConf()
    conf.Auth = users
    conf.Logger = logger

    ln, err := net.Listen("tcp", *addr)
    if err != nil {
        log.Fatalf("Failed to listen: %+v", err)
    }

    srv := runningServer {
        listener: ln,
        chat: gochat.NewServerConf(conf),
        idleTimeout: *idleTimeout,
    }

    intHndlr := make(chan os.Signal, 1)
    signal.Notify(intHndlr, os.Interrupt)

    go func() {
        log.Printf("Waiting...")
        srv.accept()
    } ()

    <-intHndlr
    log.Printf("Exiting...")
    srv.Close()
}
