package shader

// Sources are written in WebGL GLSL ES 1.00 and translated for the desktop
// context at build time.

const glassVertex = `
attribute vec2 a_position;
attribute vec2 a_texCoord;
varying vec2 v_texCoord;

void main() {
  gl_Position = vec4(a_position, 0.0, 1.0);
  v_texCoord = a_texCoord;
}
`

const glassFragment = `
precision mediump float;

varying vec2 v_texCoord;

uniform float u_time;
uniform vec2 u_resolution;
uniform vec2 u_mouse;
uniform float u_mouseInfluence;

float hash(vec2 p) {
  return fract(sin(dot(p, vec2(127.1, 311.7))) * 43758.5453);
}

float noise(vec2 p) {
  vec2 i = floor(p);
  vec2 f = fract(p);
  f = f * f * (3.0 - 2.0 * f);

  float a = hash(i);
  float b = hash(i + vec2(1.0, 0.0));
  float c = hash(i + vec2(0.0, 1.0));
  float d = hash(i + vec2(1.0, 1.0));

  return mix(mix(a, b, f.x), mix(c, d, f.x), f.y);
}

float fbm2(vec2 p) {
  return noise(p) * 0.6 + noise(p * 2.0) * 0.4;
}

void main() {
  vec2 uv = v_texCoord;
  float t = u_time * 0.06;

  vec2 mouseOffset = (u_mouse - 0.5) * u_mouseInfluence * 0.08;
  vec2 p = uv + mouseOffset;

  float wave1 = sin(p.x * 2.0 + p.y * 1.5 + t) * 0.5 + 0.5;
  float wave2 = sin(p.x * 1.2 - p.y * 2.0 + t * 0.8) * 0.5 + 0.5;
  float wave3 = sin((p.x + p.y) * 1.8 + t * 0.6) * 0.5 + 0.5;
  float n = fbm2(p * 1.5 + t * 0.3);
  float flow = wave1 * 0.4 + wave2 * 0.3 + wave3 * 0.2 + n * 0.1;

  vec3 brandBlue = vec3(0.302, 0.576, 1.0);
  vec3 brandPurple = vec3(0.545, 0.361, 0.965);
  vec3 lightBg = vec3(0.96, 0.97, 0.99);
  vec3 paleBlueBg = vec3(0.85, 0.92, 1.0);
  vec3 palePurpleBg = vec3(0.90, 0.85, 1.0);

  vec3 color = lightBg;
  color = mix(color, paleBlueBg, smoothstep(0.25, 0.5, flow));
  color = mix(color, palePurpleBg, smoothstep(0.45, 0.7, flow + uv.y * 0.2));
  color = mix(color, mix(lightBg, brandBlue, 0.25), smoothstep(0.55, 0.8, flow));
  color = mix(color, mix(lightBg, brandPurple, 0.20), smoothstep(0.65, 0.9, flow + uv.x * 0.15));

  // closed-form derivatives of the three waves
  float dx = cos(p.x * 2.0 + p.y * 1.5 + t) * 2.0 * 0.4
           + cos(p.x * 1.2 - p.y * 2.0 + t * 0.8) * 1.2 * 0.3
           + cos((p.x + p.y) * 1.8 + t * 0.6) * 1.8 * 0.2;
  float dy = cos(p.x * 2.0 + p.y * 1.5 + t) * 1.5 * 0.4
           - cos(p.x * 1.2 - p.y * 2.0 + t * 0.8) * 2.0 * 0.3
           + cos((p.x + p.y) * 1.8 + t * 0.6) * 1.8 * 0.2;

  vec3 normal = normalize(vec3(-dx * 0.15, -dy * 0.15, 1.0));
  vec3 viewDir = vec3(0.0, 0.0, 1.0);

  vec3 lightDir1 = normalize(vec3(-0.4, -0.5, 1.0));
  float spec1 = pow(max(dot(normal, normalize(lightDir1 + viewDir)), 0.0), 20.0);
  vec3 lightDir2 = normalize(vec3(0.5, -0.3, 1.0));
  float spec2 = pow(max(dot(normal, normalize(lightDir2 + viewDir)), 0.0), 15.0);
  float lightAnim = sin(t * 1.2) * 0.3;
  vec3 lightDir3 = normalize(vec3(lightAnim, -0.4, 1.0));
  float spec3 = pow(max(dot(normal, normalize(lightDir3 + viewDir)), 0.0), 25.0);

  float totalSpec = spec1 * 0.5 + spec2 * 0.3 + spec3 * 0.4;
  color += vec3(1.0) * totalSpec * 0.5;

  float fresnel = pow(1.0 - dot(normal, viewDir), 2.5);
  color += vec3(1.0) * fresnel * 0.1;
  vec3 fresnelTint = mix(brandBlue, brandPurple, wave1);
  color = mix(color, color + fresnelTint * 0.08, fresnel * 0.3);

  gl_FragColor = vec4(color, 1.0);
}
`
