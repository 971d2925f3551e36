package syspkg_test

import (
	"fmt"
	"testing"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/ptitest"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/syspkg"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAptManager(t *testing.T) {
	assert := assert.New(t)

	m := syspkg.NewAptManager()

	assert.Equal("apt-get", m.GetBin())
	assert.Equal(".deb", m.GetPackageExtension())
}

func TestAptManager_Install(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	tests := []struct {
		name         string
		packageList  *syspkg.PackageList
		listFile     string
		runErr       error
		wantCommands []string
		wantErr      bool
	}{
		{
			name:        "Empty package list",
			packageList: &syspkg.PackageList{},
		},
		{
			name:         "Direct packages",
			packageList:  &syspkg.PackageList{Packages: []string{"opensc", "pcscd"}},
			wantCommands: []string{"apt-get install -y -q opensc pcscd"},
		},
		{
			name:         "Packages from list file",
			packageList:  &syspkg.PackageList{Packages: []string{"opensc"}, PackageListFiles: []string{"/etc/instalador-pje/extra.txt"}},
			listFile:     "libccid\n# comment\npcsc-tools\n",
			wantCommands: []string{"apt-get install -y -q opensc libccid pcsc-tools"},
		},
		{
			name:         "Local packages go through dpkg",
			packageList:  &syspkg.PackageList{LocalPackages: []string{"/tmp/token_debs/libssl1.1.deb"}},
			wantCommands: []string{"dpkg -i /tmp/token_debs/libssl1.1.deb"},
		},
		{
			name:         "apt failure",
			packageList:  &syspkg.PackageList{Packages: []string{"opensc"}},
			runErr:       fmt.Errorf("exit status 100"),
			wantCommands: []string{"apt-get install -y -q opensc"},
			wantErr:      true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := ptitest.UseMemFs(t)
			require.NoError(afero.WriteFile(fs, "/tmp/token_debs/libssl1.1.deb", []byte("!<arch>\n"), 0o644))
			if tt.listFile != "" {
				require.NoError(afero.WriteFile(fs, "/etc/instalador-pje/extra.txt", []byte(tt.listFile), 0o644))
			}

			shell := ptitest.NewFakeShell(t)
			shell.On("apt-get", func(*ptitest.FakeCall) (string, error) { return "", tt.runErr })

			err := syspkg.NewAptManager().Install(tt.packageList)
			if tt.wantErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
			assert.Equal(tt.wantCommands, shell.Commands())
			for _, c := range shell.Calls {
				assert.Contains(c.EnvVars, "DEBIAN_FRONTEND=noninteractive")
				assert.True(c.InheritEnvVars)
			}
		})
	}
}

func TestAptManager_InstallLocalPackages(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	require.NoError(afero.WriteFile(fs, "/tmp/token_debs/a.deb", []byte{}, 0o644))
	require.NoError(afero.WriteFile(fs, "/tmp/token_debs/b.deb", []byte{}, 0o644))

	shell := ptitest.NewFakeShell(t)
	m := syspkg.NewAptManager()

	require.NoError(m.InstallLocalPackages(nil))
	assert.Empty(shell.Calls)

	require.NoError(m.InstallLocalPackages([]string{"/tmp/token_debs/a.deb", "/tmp/token_debs/b.deb"}))
	calls := shell.CallsTo("dpkg")
	require.Len(calls, 1)
	ptitest.CommonShellCalls["dpkgInstall"].Equal(t, calls[0].Name, calls[0].Args, calls[0].EnvVars, calls[0].InheritEnvVars)
	assert.Equal([]string{"-i", "/tmp/token_debs/a.deb", "/tmp/token_debs/b.deb"}, calls[0].Args)

	err := m.InstallLocalPackages([]string{"/tmp/token_debs/missing.deb"})
	assert.ErrorContains(err, "does not exist")
	assert.Len(shell.CallsTo("dpkg"), 1)
}

func TestAptManager_Update(t *testing.T) {
	assert := assert.New(t)

	shell := ptitest.NewFakeShell(t)
	assert.NoError(syspkg.NewAptManager().Update())

	calls := shell.CallsTo("apt-get")
	assert.Len(calls, 1)
	ptitest.CommonShellCalls["aptUpdate"].Equal(t, calls[0].Name, calls[0].Args, calls[0].EnvVars, calls[0].InheritEnvVars)

	shell.On("apt-get", func(*ptitest.FakeCall) (string, error) { return "", fmt.Errorf("exit status 100") })
	assert.ErrorContains(syspkg.NewAptManager().Update(), "failed to update system package manager")
}

func TestAptManager_FixBroken(t *testing.T) {
	assert := assert.New(t)

	shell := ptitest.NewFakeShell(t)
	assert.NoError(syspkg.NewAptManager().FixBroken())

	calls := shell.CallsTo("apt-get")
	assert.Len(calls, 1)
	ptitest.CommonShellCalls["aptFixBroken"].Equal(t, calls[0].Name, calls[0].Args, calls[0].EnvVars, calls[0].InheritEnvVars)
	assert.Equal([]string{"-f", "install", "-y", "-q"}, calls[0].Args)
}
