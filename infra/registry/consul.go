package registry

import (
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type ConsulConfig struct {
	Address    string
	Scheme     string
	Datacenter string
}

type ServiceConfig struct {
	ID          string
	Name        string
	Tags        []string
	Address     string
	Port        int
	HealthCheck *HealthCheck
}

type HealthCheck struct {
	HTTP                           string
	Interval                       time.Duration
	Timeout                        time.Duration
	DeregisterCriticalServiceAfter time.Duration
}

// ConsulRegistry registers this service in Consul with an HTTP health check.
type ConsulRegistry struct {
	agent *api.Agent
	log   *zap.Logger
}

func NewConsulRegistry(cfg *ConsulConfig, log *zap.Logger) (*ConsulRegistry, error) {
	consulCfg := api.DefaultConfig()
	consulCfg.Address = cfg.Address
	consulCfg.Scheme = cfg.Scheme
	consulCfg.Datacenter = cfg.Datacenter

	client, err := api.NewClient(consulCfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	if _, err := client.Status().Leader(); err != nil {
		return nil, fmt.Errorf("connect consul: %w", err)
	}
	log.Info("consul connected", zap.String("address", cfg.Address))
	return &ConsulRegistry{agent: client.Agent(), log: log}, nil
}

func (r *ConsulRegistry) Register(cfg *ServiceConfig) error {
	registration := &api.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Tags:    cfg.Tags,
		Address: cfg.Address,
		Port:    cfg.Port,
	}
	if cfg.HealthCheck != nil {
		registration.Check = &api.AgentServiceCheck{
			HTTP:                           cfg.HealthCheck.HTTP,
			Interval:                       cfg.HealthCheck.Interval.String(),
			Timeout:                        cfg.HealthCheck.Timeout.String(),
			DeregisterCriticalServiceAfter: cfg.HealthCheck.DeregisterCriticalServiceAfter.String(),
		}
	}
	if err := r.agent.ServiceRegister(registration); err != nil {
		return fmt.Errorf("register service %s: %w", cfg.Name, err)
	}
	r.log.Info("service registered", zap.String("name", cfg.Name), zap.String("id", cfg.ID))
	return nil
}

func (r *ConsulRegistry) Deregister(serviceID string) error {
	if err := r.agent.ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("deregister service %s: %w", serviceID, err)
	}
	r.log.Info("service deregistered", zap.String("id", serviceID))
	return nil
}

// NewServiceConfig describes this process for registration, checking path on the local IP.
func NewServiceConfig(name string, port int, healthPath string) (*ServiceConfig, error) {
	ip, err := LocalIP()
	if err != nil {
		return nil, fmt.Errorf("resolve local ip: %w", err)
	}
	return &ServiceConfig{
		ID:      fmt.Sprintf("%s-%s-%d", name, ip, port),
		Name:    name,
		Tags:    []string{name, "api"},
		Address: ip,
		Port:    port,
		HealthCheck: &HealthCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", ip, port, healthPath),
			Interval:                       10 * time.Second,
			Timeout:                        3 * time.Second,
			DeregisterCriticalServiceAfter: time.Minute,
		},
	}, nil
}

// LocalIP returns the address of the interface used for outbound traffic. No packet is sent.
func LocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
