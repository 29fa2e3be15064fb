package roomchat

import (
    "log"
    "os"
    "strings"
    "sync"
)

// Authenticator verifies and registers user credentials.
//
// The chat server itself never inspects passwords; it only needs the two
// boolean answers below. Any credential backend (a file, a database, an
// external identity provider...) may be plugged in here.
type Authenticator interface {
    // Authenticate report whether `username` exists and `password`
    // matches its stored credential.
    Authenticate(username, password string) bool

    // Register store the credential pair, reporting false if the
    // username was already taken.
    Register(username, password string) bool
}

// FileUserStore is an Authenticator backed by a plain text file with one
// "username:password" pair per line.
//
// The whole table is kept in memory; the file is rewritten on every
// successful registration.
type FileUserStore struct {
    // path of the backing file.
    path string

    // users maps each username to its password.
    users map[string]string

    // lock synchronizes access to `users` and to the backing file.
    lock sync.RWMutex

    // logger used to report load/save failures. May be nil.
    logger *log.Logger
}

// Authenticate report whether `username` exists and `password` matches.
func (fs *FileUserStore) Authenticate(username, password string) bool {
    fs.lock.RLock()
    defer fs.lock.RUnlock()

    stored, ok := fs.users[username]
    return ok && stored == password
}

// Register store the credential pair, reporting false if the username was
// already taken. On success the backing file is rewritten.
func (fs *FileUserStore) Register(username, password string) bool {
    fs.lock.Lock()
    defer fs.lock.Unlock()

    if _, ok := fs.users[username]; ok {
        return false
    }
    fs.users[username] = password
    fs.save()

    return true
}

// load the user table from the backing file, if it exists.
func (fs *FileUserStore) load() error {
    data, err := os.ReadFile(fs.path)
    if err != nil {
        if os.IsNotExist(err) {
            return nil
        }
        return err
    }

    for _, line := range strings.Split(string(data), "\n") {
        parts := strings.SplitN(strings.TrimRight(line, "\r"), ":", 2)
        if len(parts) == 2 {
            fs.users[parts[0]] = parts[1]
        }
    }
    return nil
}

// save the user table to the backing file.
//
// The caller must hold the write lock.
func (fs *FileUserStore) save() {
    var sb strings.Builder
    for username, password := range fs.users {
        sb.WriteString(username)
        sb.WriteString(":")
        sb.WriteString(password)
        sb.WriteString("\n")
    }

    err := os.WriteFile(fs.path, []byte(sb.String()), 0600)
    if err != nil && fs.logger != nil {
        fs.logger.Printf("[ERROR] roomchat/auth: Couldn't save the user file.\n\tpath: \"%s\"\n\terror: %+v",
                fs.path, err)
    }
}

// NewFileUserStore load (or start) the credential file at `path`.
//
// An empty store registers a default "test" user, so a fresh server is
// usable right away.
func NewFileUserStore(path string, logger *log.Logger) (*FileUserStore, error) {
    fs := &FileUserStore {
        path: path,
        users: make(map[string]string),
        logger: logger,
    }

    err := fs.load()
    if err != nil {
        return nil, err
    }

    if len(fs.users) == 0 {
        fs.Register("test", "test123")
    }

    return fs, nil
}
