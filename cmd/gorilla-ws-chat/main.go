// The same chat server as cmd/chat-server, served over HTTP+WebSocket
// instead of a raw TLS socket. Each chat line travels as one text frame.
package main

import (
    "flag"
    gows "github.com/gorilla/websocket"
    "log"
    "net/http"
    "os"
    "os/signal"
    gochat "roomchat"
    gochat_ws "roomchat/gorilla-ws-conn"
    "time"
)

type server struct {
    // The server's HTTP server.
    httpServer *http.Server

    // The chat server.
    chat gochat.ChatServer

    // upgrader used on every new connection.
    upgrader gows.Upgrader

    // idleTimeout handed to every new connection.
    idleTimeout time.Duration
}

// ServeHTTP is called by Go's http package whenever a new HTTP request arrives.
func (s *server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
    log.Printf("%s - %s - %s", req.RemoteAddr, req.Method, req.URL.Path)

    conn, err := gochat_ws.NewConn(s.upgrader, s.idleTimeout, w, req)
    if err != nil {
        log.Printf("Couldn't upgrade the connection: %+v", err)
        return
    }

    // The HTTP package already runs each request on its own goroutine.
    s.chat.Handle(conn)
}

// Halts the `http.Server` and the chat server, if still running.
func (s *server) Close() {
    if s.httpServer != nil {
        s.httpServer.Close()
        s.httpServer = nil
    }
    if s.chat != nil {
        s.chat.Close()
        s.chat = nil
    }
}

func ignoreOrigin(r *http.Request) bool {
    return true
}

func main() {
    log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)

    addr := flag.String("addr", "0.0.0.0:8889", "address on which the server accepts connections")
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

    srv := &server {
        chat: gochat.NewServerConf(conf),
        upgrader: gows.Upgrader {
            ReadBufferSize: 1024,
            WriteBufferSize: 1024,
            CheckOrigin: ignoreOrigin,
        },
        idleTimeout: *idleTimeout,
    }
    srv.httpServer = &http.Server {
        Addr: *addr,
        Handler: srv,
    }

    intHndlr := make(chan os.Signal, 1)
    signal.Notify(intHndlr, os.Interrupt)

    go func() {
        log.Printf("Waiting...")
        srv.httpServer.ListenAndServe()
    } ()

    <-intHndlr
    log.Printf("Exiting...")
    srv.Close()
}
