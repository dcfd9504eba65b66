package testtypes

import (
	"fmt"

	"github.com/sectrean/nanoinject"
)

// Logger is implemented by ConsoleLogger and MemoryLogger.
type Logger interface {
	Log(msg string)
}

// Config is a plain value dependency.
type Config struct {
	AppName string
	Port    int
}

// MemoryLogger records messages.
type MemoryLogger struct {
	Prefix   string
	Messages []string
}

func (l *MemoryLogger) Log(msg string) {
	l.Messages = append(l.Messages, l.Prefix+msg)
}

// AppService depends on Logger and Config.
type AppService struct {
	Logger Logger
	Config Config
}

func (s *AppService) Start() {
	s.Logger.Log(fmt.Sprintf("Starting %s on port %d", s.Config.AppName, s.Config.Port))
}

// User mixes an explicit argument with an injected dependency.
type User struct {
	Name   string
	Logger Logger
}

func (u *User) Greet() {
	u.Logger.Log("Hello, I am " + u.Name)
}

var (
	LoggerProvider     = di.NewProvider[Logger](di.WithName("Logger"))
	ConfigProvider     = di.NewProvider[Config](di.WithName("Config"))
	AppServiceProvider = di.NewProvider[*AppService](di.WithName("AppService"))
)

// NewAppService resolves its dependencies from the active injector.
func NewAppService() *AppService {
	return &AppService{
		Logger: LoggerProvider.MustGet(),
		Config: ConfigProvider.MustGet(),
	}
}

// NewUser takes its name explicitly and resolves the logger from inj.
func NewUser(inj *di.Injector, name string) (*User, error) {
	log, err := di.Resolve(inj, LoggerProvider)
	if err != nil {
		return nil, err
	}

	return &User{Name: name, Logger: log}, nil
}
