package mock

import (
	"context"
	"errors"

	"github.com/mlopslab/mlopsctl/pkg/kube"
	kubeapps "k8s.io/api/apps/v1"
	kubecore "k8s.io/api/core/v1"
)

// NewCluster gets a mocked kube.Cluster.
//
// You can fake cluster behaviours via Impl, and spy its usage via Called.
func NewCluster() *MockCluster {
	return &MockCluster{}
}

type MockCluster struct {
	Impl struct {
		ServerVersion func() (string, error)

		GetNamespace    func(ctx context.Context, name string) (*kubecore.Namespace, error)
		CreateNamespace func(ctx context.Context, ns *kubecore.Namespace) (*kubecore.Namespace, error)

		GetDeployment    func(ctx context.Context, namespace string, name string) (*kubeapps.Deployment, error)
		CreateDeployment func(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error)
		UpdateDeployment func(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error)

		GetService    func(ctx context.Context, namespace string, name string) (*kubecore.Service, error)
		CreateService func(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error)
		UpdateService func(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error)
		ListServices  func(ctx context.Context, namespace string) ([]kubecore.Service, error)

		GetConfigMap    func(ctx context.Context, namespace string, name string) (*kubecore.ConfigMap, error)
		CreateConfigMap func(ctx context.Context, namespace string, cm *kubecore.ConfigMap) (*kubecore.ConfigMap, error)
		UpdateConfigMap func(ctx context.Context, namespace string, cm *kubecore.ConfigMap) (*kubecore.ConfigMap, error)
	}
	Called struct {
		ServerVersion uint64

		GetNamespace    uint64
		CreateNamespace uint64

		GetDeployment    uint64
		CreateDeployment uint64
		UpdateDeployment uint64

		GetService    uint64
		CreateService uint64
		UpdateService uint64
		ListServices  uint64

		GetConfigMap    uint64
		CreateConfigMap uint64
		UpdateConfigMap uint64
	}
}

// MockCluster implements kube.Cluster
var _ kube.Cluster = &MockCluster{}

func (m *MockCluster) ServerVersion() (string, error) {
	m.Called.ServerVersion += 1
	if m.Impl.ServerVersion == nil {
		return "", errors.New("[MOCK] not implemented")
	}
	return m.Impl.ServerVersion()
}

func (m *MockCluster) GetNamespace(ctx context.Context, name string) (*kubecore.Namespace, error) {
	m.Called.GetNamespace += 1
	if m.Impl.GetNamespace == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetNamespace(ctx, name)
}

func (m *MockCluster) CreateNamespace(ctx context.Context, ns *kubecore.Namespace) (*kubecore.Namespace, error) {
	m.Called.CreateNamespace += 1
	if m.Impl.CreateNamespace == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.CreateNamespace(ctx, ns)
}

func (m *MockCluster) GetDeployment(ctx context.Context, namespace string, name string) (*kubeapps.Deployment, error) {
	m.Called.GetDeployment += 1
	if m.Impl.GetDeployment == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetDeployment(ctx, namespace, name)
}

func (m *MockCluster) CreateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error) {
	m.Called.CreateDeployment += 1
	if m.Impl.CreateDeployment == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.CreateDeployment(ctx, namespace, depl)
}

func (m *MockCluster) UpdateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error) {
	m.Called.UpdateDeployment += 1
	if m.Impl.UpdateDeployment == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.UpdateDeployment(ctx, namespace, depl)
}

func (m *MockCluster) GetService(ctx context.Context, namespace string, name string) (*kubecore.Service, error) {
	m.Called.GetService += 1
	if m.Impl.GetService == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetService(ctx, namespace, name)
}

func (m *MockCluster) CreateService(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error) {
	m.Called.CreateService += 1
	if m.Impl.CreateService == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.CreateService(ctx, namespace, svc)
}

func (m *MockCluster) UpdateService(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error) {
	m.Called.UpdateService += 1
	if m.Impl.UpdateService == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.UpdateService(ctx, namespace, svc)
}

func (m *MockCluster) ListServices(ctx context.Context, namespace string) ([]kubecore.Service, error) {
	m.Called.ListServices += 1
	if m.Impl.ListServices == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.ListServices(ctx, namespace)
}

func (m *MockCluster) GetConfigMap(ctx context.Context, namespace string, name string) (*kubecore.ConfigMap, error) {
	m.Called.GetConfigMap += 1
	if m.Impl.GetConfigMap == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetConfigMap(ctx, namespace, name)
}

func (m *MockCluster) CreateConfigMap(ctx context.Context, namespace string, cm *kubecore.ConfigMap) (*kubecore.ConfigMap, error) {
	m.Called.CreateConfigMap += 1
	if m.Impl.CreateConfigMap == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.CreateConfigMap(ctx, namespace, cm)
}

func (m *MockCluster) UpdateConfigMap(ctx context.Context, namespace string, cm *kubecore.ConfigMap) (*kubecore.ConfigMap, error) {
	m.Called.UpdateConfigMap += 1
	if m.Impl.UpdateConfigMap == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.UpdateConfigMap(ctx, namespace, cm)
}
