// compileinfoprint is imported for the side effect of logging the build
// information of the binary at startup
package compileinfoprint

import "github.com/carbocation/ecms/compileinfo"

func init() {
	compileinfo.Log()
}
