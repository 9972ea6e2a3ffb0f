// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package couchdb3

// Version is the current version of this package.
const Version = "1.0.0"

// Known vendor strings
const (
	VendorCouchDB  = "The Apache Software Foundation"
	VendorCloudant = "IBM Cloudant"
)

// UserPrefix is prepended to user names to form the document ID of the
// corresponding record in the _users database.
const UserPrefix = "org.couchdb.user:"

// Reserved system databases, exempt from database name validation.
const (
	UsersDatabase         = "_users"
	ReplicatorDatabase    = "_replicator"
	GlobalChangesDatabase = "_global_changes"
)

const (
	prefixDesign = "_design/"
	prefixLocal  = "_local/"
)
